package model

import "strings"

type CategoryStatus string

const (
	CategoryStatusPending  CategoryStatus = "pending"
	CategoryStatusApproved CategoryStatus = "approved"
	CategoryStatusRejected CategoryStatus = "rejected"
)

func (e CategoryStatus) IsValid() bool {
	switch e {
	case CategoryStatusPending, CategoryStatusApproved, CategoryStatusRejected:
		return true
	}
	return false
}

func (e CategoryStatus) String() string {
	return string(e)
}

// OrganizationCategory - категория услуг организации из раздела супер-администратора.
// Даты приходят строками в том виде, в каком их отдает бэкенд.
type OrganizationCategory struct {
	ID               string         `json:"id"`
	CategoryName     string         `json:"categoryName"`
	OrganizationID   string         `json:"organizationId"`
	OrganizationName string         `json:"organizationName"`
	Industry         string         `json:"industry"`
	Description      string         `json:"description"`
	Status           CategoryStatus `json:"status"`
	CreatedAt        string         `json:"createdAt"`
	UpdatedAt        string         `json:"updatedAt"`
}

type CategoryDraft struct {
	CategoryName     string `json:"categoryName"`
	OrganizationID   string `json:"organizationId,omitempty"`
	OrganizationName string `json:"organizationName,omitempty"`
	Industry         string `json:"industry"`
	Description      string `json:"description"`
}

// Normalize обрезает пробелы в текстовых полях
func (d CategoryDraft) Normalize() CategoryDraft {
	d.CategoryName = strings.TrimSpace(d.CategoryName)
	d.Industry = strings.TrimSpace(d.Industry)
	d.Description = strings.TrimSpace(d.Description)
	return d
}

// Draft возвращает редактируемую часть категории
func (c *OrganizationCategory) Draft() CategoryDraft {
	return CategoryDraft{
		CategoryName:     c.CategoryName,
		OrganizationID:   c.OrganizationID,
		OrganizationName: c.OrganizationName,
		Industry:         c.Industry,
		Description:      c.Description,
	}
}

type CategoryList struct {
	Categories []OrganizationCategory `json:"categories"`
	Total      int                    `json:"total"`
}
