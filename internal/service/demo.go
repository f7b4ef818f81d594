package service

import (
	"time"

	"verification_portal/internal/model"
)

// Демонстрационный набор данных. Отдается только при включенном FALLBACK_DEMO и только на чтение.

func demoTime(value string) time.Time {
	t, _ := time.Parse(time.RFC3339, value)
	return t
}

func demoVerifications() []model.VerificationSummary {
	records := []struct {
		id, verificationID, organization, createdAt string
		status                                      model.VerificationStatus
	}{
		{"1", "DV-001", "Tech Solutions Ltd", "2024-01-15T09:00:00Z", model.VerificationStatusDraft},
		{"2", "DV-002", "Global Services Inc", "2024-01-14T14:30:00Z", model.VerificationStatusSubmitted},
		{"3", "DV-003", "Innovation Hub Co", "2024-01-13T11:15:00Z", model.VerificationStatusApproved},
		{"4", "DV-004", "Digital Systems LLC", "2024-01-12T16:45:00Z", model.VerificationStatusRejected},
	}

	out := make([]model.VerificationSummary, 0, len(records))
	for _, r := range records {
		v := demoVerification(r.id)
		v.VerificationID = r.verificationID
		v.OrganizationName = r.organization
		v.Status = r.status
		v.CreatedAt = demoTime(r.createdAt)
		out = append(out, v.Summary())
	}
	return out
}

// demoVerification повторяет запись DV-001 под запрошенным id
func demoVerification(id string) *model.Verification {
	return &model.Verification{
		ID:                  id,
		VerificationID:      "DV-001",
		Status:              model.VerificationStatusDraft,
		Country:             "Nigeria",
		State:               "Lagos",
		Lga:                 "Ikeja",
		City:                "Ikeja",
		CityRegion:          "Allen Avenue",
		OrganizationID:      "org-1",
		OrganizationName:    "Tech Solutions Ltd",
		TargetUserID:        "user-1",
		TargetUserFirstName: "John",
		TargetUserLastName:  "Doe",
		OrganizationDetails: model.OrganizationDetails{
			Name:                "Tech Solutions Ltd",
			Attachments:         []model.Attachment{},
			HeadquartersAddress: "123 Allen Avenue, Ikeja, Lagos",
			AddressAttachments:  []model.Attachment{},
		},
		TransportationCost: model.TransportationCost{
			Going: []model.Leg{},
		},
		CreatedAt: demoTime("2024-01-15T09:00:00Z"),
	}
}

func demoOrganizations() []model.Organization {
	return []model.Organization{
		{ID: "org-1", Name: "Tech Solutions Ltd"},
		{ID: "org-2", Name: "Global Services Inc"},
		{ID: "org-3", Name: "Innovation Hub Co"},
	}
}

func demoUsers() []model.User {
	return []model.User{
		{ID: "user-1", FirstName: "John", LastName: "Doe", FullName: "John Doe", Email: "john@example.com", OrganizationID: "org-1"},
		{ID: "user-2", FirstName: "Jane", LastName: "Smith", FullName: "Jane Smith", Email: "jane@example.com", OrganizationID: "org-2"},
	}
}

func demoCategories() []model.OrganizationCategory {
	return []model.OrganizationCategory{
		{ID: "1", CategoryName: "Hair Styling Services", OrganizationName: "Glamour Beauty Salon", OrganizationID: "org_001", Industry: "Beauty & Personal Care", Description: "Professional hair styling and cutting services", Status: model.CategoryStatusApproved, CreatedAt: "2023-01-15", UpdatedAt: "2023-01-15"},
		{ID: "2", CategoryName: "Fitness Training", OrganizationName: "Elite Fitness Center", OrganizationID: "org_002", Industry: "Health & Fitness", Description: "Personal training and fitness coaching services", Status: model.CategoryStatusPending, CreatedAt: "2023-02-20", UpdatedAt: "2023-02-20"},
		{ID: "3", CategoryName: "Wedding Photography", OrganizationName: "Capture Moments Studio", OrganizationID: "org_003", Industry: "Photography", Description: "Professional wedding and event photography services", Status: model.CategoryStatusApproved, CreatedAt: "2023-03-10", UpdatedAt: "2023-03-10"},
		{ID: "4", CategoryName: "Mobile Car Repair", OrganizationName: "AutoFix Mobile Services", OrganizationID: "org_004", Industry: "Automotive", Description: "On-site car repair and maintenance services", Status: model.CategoryStatusRejected, CreatedAt: "2023-04-05", UpdatedAt: "2023-04-05"},
	}
}

func demoCategory(id string) (*model.OrganizationCategory, bool) {
	for _, c := range demoCategories() {
		if c.ID == id {
			return &c, true
		}
	}
	return nil, false
}
