package model

type Organization struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	AdminID        string `json:"adminId"`
	CustomIDPrefix string `json:"customIdPrefix"`
}

type OrganizationList struct {
	Organizations []Organization `json:"organizations"`
	Total         int            `json:"total"`
}

type User struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	FullName       string `json:"fullName"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	OrganizationID string `json:"organizationId"`
}

type UserList struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
}

// Stats - агрегаты для администратора, структура задается бэкендом
type Stats map[string]any

// Actor - тот, кто выполняет действие. Аутентификация внешняя, сюда попадает уже готовый результат.
type Actor struct {
	ID         string
	Privileged bool
}
