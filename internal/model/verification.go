package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type VerificationStatus string

const (
	VerificationStatusDraft     VerificationStatus = "draft"
	VerificationStatusSubmitted VerificationStatus = "submitted"
	VerificationStatusApproved  VerificationStatus = "approved"
	VerificationStatusRejected  VerificationStatus = "rejected"
)

var AllVerificationStatus = []VerificationStatus{
	VerificationStatusDraft,
	VerificationStatusSubmitted,
	VerificationStatusApproved,
	VerificationStatusRejected,
}

func (e VerificationStatus) IsValid() bool {
	switch e {
	case VerificationStatusDraft, VerificationStatusSubmitted, VerificationStatusApproved, VerificationStatusRejected:
		return true
	}
	return false
}

func (e VerificationStatus) String() string {
	return string(e)
}

type Attachment struct {
	FileURL  string `json:"fileUrl"`
	Comments string `json:"comments"`
}

type OrganizationDetails struct {
	Name                string       `json:"name"`
	Attachments         []Attachment `json:"attachments"`
	HeadquartersAddress string       `json:"headquartersAddress"`
	AddressAttachments  []Attachment `json:"addressAttachments"`
}

// BuildingPictures хранит ссылки на медиафайлы, все поля необязательные
type BuildingPictures struct {
	FrontView            string `json:"frontView"`
	StreetPicture        string `json:"streetPicture"`
	AgentInFrontBuilding string `json:"agentInFrontBuilding"`
	WhatsappLocation     string `json:"whatsappLocation"`
	InsideOrganization   string `json:"insideOrganization"`
	WithStaffOrOwner     string `json:"withStaffOrOwner"`
	VideoWithNeighbor    string `json:"videoWithNeighbor"`
}

type Leg struct {
	StartPoint      string  `json:"startPoint"`
	Time            string  `json:"time"`
	NextDestination string  `json:"nextDestination"`
	FareSpent       float64 `json:"fareSpent"`
	TimeSpent       string  `json:"timeSpent"`
}

type ComingBack struct {
	TotalTransportationCost float64 `json:"totalTransportationCost"`
	OtherExpensesCost       float64 `json:"otherExpensesCost"`
	ReceiptURL              string  `json:"receiptUrl"`
}

// Total возвращает сумму расходов на обратную дорогу
func (c ComingBack) Total() decimal.Decimal {
	return decimal.NewFromFloat(c.TotalTransportationCost).Add(decimal.NewFromFloat(c.OtherExpensesCost))
}

type TransportationCost struct {
	Going            []Leg      `json:"going"`
	FinalDestination string     `json:"finalDestination"`
	FinalFareSpent   float64    `json:"finalFareSpent"`
	FinalTime        string     `json:"finalTime"`
	TotalJourneyTime string     `json:"totalJourneyTime"`
	ComingBack       ComingBack `json:"comingBack"`
}

// FareTotal суммирует стоимость всех участков пути туда, включая последний
func (t TransportationCost) FareTotal() decimal.Decimal {
	total := decimal.NewFromFloat(t.FinalFareSpent)
	for _, leg := range t.Going {
		total = total.Add(decimal.NewFromFloat(leg.FareSpent))
	}
	return total
}

// CostTotals - итоги расходов на дорогу
type CostTotals struct {
	Going      decimal.Decimal `json:"going"`
	ComingBack decimal.Decimal `json:"comingBack"`
	Total      decimal.Decimal `json:"total"`
}

func (t TransportationCost) Totals() CostTotals {
	going := t.FareTotal()
	back := t.ComingBack.Total()
	return CostTotals{
		Going:      going,
		ComingBack: back,
		Total:      going.Add(back),
	}
}

type Verification struct {
	ID                  string              `json:"_id"`
	VerificationID      string              `json:"verificationId"`
	Status              VerificationStatus  `json:"status"`
	Country             string              `json:"country"`
	State               string              `json:"state"`
	Lga                 string              `json:"lga"`
	City                string              `json:"city"`
	CityRegion          string              `json:"cityRegion"`
	OrganizationID      string              `json:"organizationId"`
	OrganizationName    string              `json:"organizationName"`
	TargetUserID        string              `json:"targetUserId"`
	TargetUserFirstName string              `json:"targetUserFirstName"`
	TargetUserLastName  string              `json:"targetUserLastName"`
	VerifierUserID      string              `json:"verifierUserId,omitempty"`
	VerifierName        string              `json:"verifierName,omitempty"`
	OrganizationDetails OrganizationDetails `json:"organizationDetails"`
	BuildingPictures    BuildingPictures    `json:"buildingPictures"`
	TransportationCost  TransportationCost  `json:"transportationCost"`
	ReviewComments      string              `json:"reviewComments,omitempty"`
	CreatedAt           time.Time           `json:"createdAt"`
	SubmittedAt         *time.Time          `json:"submittedAt,omitempty"`
}

// Summary возвращает краткое представление записи для списков
func (v *Verification) Summary() VerificationSummary {
	return VerificationSummary{
		ID:               v.ID,
		VerificationID:   v.VerificationID,
		OrganizationName: v.OrganizationName,
		Status:           v.Status,
		CreatedAt:        v.CreatedAt,
	}
}

// Draft возвращает изменяемую часть записи
func (v *Verification) Draft() Draft {
	return Draft{
		Country:             v.Country,
		State:               v.State,
		Lga:                 v.Lga,
		City:                v.City,
		CityRegion:          v.CityRegion,
		OrganizationID:      v.OrganizationID,
		OrganizationName:    v.OrganizationName,
		TargetUserID:        v.TargetUserID,
		TargetUserFirstName: v.TargetUserFirstName,
		TargetUserLastName:  v.TargetUserLastName,
		OrganizationDetails: v.OrganizationDetails,
		BuildingPictures:    v.BuildingPictures,
		TransportationCost:  v.TransportationCost,
	}
}

type VerificationSummary struct {
	ID               string             `json:"_id"`
	VerificationID   string             `json:"verificationId"`
	OrganizationName string             `json:"organizationName"`
	Status           VerificationStatus `json:"status"`
	CreatedAt        time.Time          `json:"createdAt"`
}

// Draft соответствует телу запроса на создание проверки
type Draft struct {
	Country             string              `json:"country"`
	State               string              `json:"state"`
	Lga                 string              `json:"lga"`
	City                string              `json:"city"`
	CityRegion          string              `json:"cityRegion"`
	OrganizationID      string              `json:"organizationId"`
	OrganizationName    string              `json:"organizationName"`
	TargetUserID        string              `json:"targetUserId"`
	TargetUserFirstName string              `json:"targetUserFirstName"`
	TargetUserLastName  string              `json:"targetUserLastName"`
	OrganizationDetails OrganizationDetails `json:"organizationDetails"`
	BuildingPictures    BuildingPictures    `json:"buildingPictures"`
	TransportationCost  TransportationCost  `json:"transportationCost"`
}

// DraftPatch - частичное обновление черновика, nil поля не отправляются
type DraftPatch struct {
	Country             *string              `json:"country,omitempty"`
	State               *string              `json:"state,omitempty"`
	Lga                 *string              `json:"lga,omitempty"`
	City                *string              `json:"city,omitempty"`
	CityRegion          *string              `json:"cityRegion,omitempty"`
	OrganizationID      *string              `json:"organizationId,omitempty"`
	OrganizationName    *string              `json:"organizationName,omitempty"`
	TargetUserID        *string              `json:"targetUserId,omitempty"`
	TargetUserFirstName *string              `json:"targetUserFirstName,omitempty"`
	TargetUserLastName  *string              `json:"targetUserLastName,omitempty"`
	OrganizationDetails *OrganizationDetails `json:"organizationDetails,omitempty"`
	BuildingPictures    *BuildingPictures    `json:"buildingPictures,omitempty"`
	TransportationCost  *TransportationCost  `json:"transportationCost,omitempty"`
}

// Apply накладывает заполненные поля патча на черновик
func (p DraftPatch) Apply(d Draft) Draft {
	setString(&d.Country, p.Country)
	setString(&d.State, p.State)
	setString(&d.Lga, p.Lga)
	setString(&d.City, p.City)
	setString(&d.CityRegion, p.CityRegion)
	setString(&d.OrganizationID, p.OrganizationID)
	setString(&d.OrganizationName, p.OrganizationName)
	setString(&d.TargetUserID, p.TargetUserID)
	setString(&d.TargetUserFirstName, p.TargetUserFirstName)
	setString(&d.TargetUserLastName, p.TargetUserLastName)
	if p.OrganizationDetails != nil {
		d.OrganizationDetails = *p.OrganizationDetails
	}
	if p.BuildingPictures != nil {
		d.BuildingPictures = *p.BuildingPictures
	}
	if p.TransportationCost != nil {
		d.TransportationCost = *p.TransportationCost
	}
	return d
}

// Fields возвращает json-имена полей, которые присутствуют в патче
func (p DraftPatch) Fields() []string {
	var fields []string
	add := func(name string, set bool) {
		if set {
			fields = append(fields, name)
		}
	}
	add("country", p.Country != nil)
	add("state", p.State != nil)
	add("lga", p.Lga != nil)
	add("city", p.City != nil)
	add("cityRegion", p.CityRegion != nil)
	add("organizationId", p.OrganizationID != nil)
	add("organizationName", p.OrganizationName != nil)
	add("targetUserId", p.TargetUserID != nil)
	add("targetUserFirstName", p.TargetUserFirstName != nil)
	add("targetUserLastName", p.TargetUserLastName != nil)
	add("organizationDetails", p.OrganizationDetails != nil)
	add("buildingPictures", p.BuildingPictures != nil)
	add("transportationCost", p.TransportationCost != nil)
	return fields
}

// Merge объединяет два патча, поля next имеют приоритет
func (p DraftPatch) Merge(next DraftPatch) DraftPatch {
	mergeString(&p.Country, next.Country)
	mergeString(&p.State, next.State)
	mergeString(&p.Lga, next.Lga)
	mergeString(&p.City, next.City)
	mergeString(&p.CityRegion, next.CityRegion)
	mergeString(&p.OrganizationID, next.OrganizationID)
	mergeString(&p.OrganizationName, next.OrganizationName)
	mergeString(&p.TargetUserID, next.TargetUserID)
	mergeString(&p.TargetUserFirstName, next.TargetUserFirstName)
	mergeString(&p.TargetUserLastName, next.TargetUserLastName)
	if next.OrganizationDetails != nil {
		p.OrganizationDetails = next.OrganizationDetails
	}
	if next.BuildingPictures != nil {
		p.BuildingPictures = next.BuildingPictures
	}
	if next.TransportationCost != nil {
		p.TransportationCost = next.TransportationCost
	}
	return p
}

func (p DraftPatch) IsEmpty() bool {
	return len(p.Fields()) == 0
}

func mergeString(dst **string, src *string) {
	if src != nil {
		*dst = src
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

type ReviewDecision struct {
	Status   string `json:"status"`
	Comments string `json:"comments"`
}

type VerificationList struct {
	Verifications []VerificationSummary `json:"verifications"`
	Total         int                   `json:"total"`
}
