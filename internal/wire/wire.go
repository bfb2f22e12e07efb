// Package wire преобразует внутреннее представление полиса (camelCase)
// во внешний формат API (snake_case на верхнем уровне полиса).
//
// Переименование не рекурсивно: вложенные сущности (страхователь, водители,
// автомобили) передаются без изменений. Обратного преобразования нет -
// сервер возвращает полисы уже во внутреннем представлении, поэтому
// отображение нужно только на пути записи.
package wire

import "github.com/frontandrew/insura/internal/domain"

// Record - полис в формате API для создания или частичного обновления.
// Отсутствующие поля не сериализуются вовсе (не отправляются как null)
type Record struct {
	PolicyStatus         *domain.PolicyStatus `json:"policy_status,omitempty"`
	PolicyType           *string              `json:"policy_type,omitempty"`
	PolicyEffectiveDate  *string              `json:"policy_effective_date,omitempty"`
	PolicyExpirationDate *string              `json:"policy_expiration_date,omitempty"`
	PolicyHolder         *domain.PolicyHolder `json:"policy_holder,omitempty"`
	Drivers              []domain.Driver      `json:"drivers,omitempty"`
	Vehicles             []domain.Vehicle     `json:"vehicles,omitempty"`
}

// FromForm преобразует полную форму полиса в формат API
func FromForm(form *domain.PolicyForm) Record {
	holder := form.PolicyHolder
	return Record{
		PolicyStatus:         &form.PolicyStatus,
		PolicyType:           &form.PolicyType,
		PolicyEffectiveDate:  &form.PolicyEffectiveDate,
		PolicyExpirationDate: &form.PolicyExpirationDate,
		PolicyHolder:         &holder,
		Drivers:              form.Drivers,
		Vehicles:             form.Vehicles,
	}
}

// FromPatch преобразует частичное обновление в формат API.
// Копируются только присутствующие поля: отсутствующие ключи
// остаются отсутствующими и в записи
func FromPatch(patch *domain.PolicyPatch) Record {
	rec := Record{}
	if patch.PolicyStatus != nil {
		rec.PolicyStatus = patch.PolicyStatus
	}
	if patch.PolicyType != nil {
		rec.PolicyType = patch.PolicyType
	}
	if patch.PolicyEffectiveDate != nil {
		rec.PolicyEffectiveDate = patch.PolicyEffectiveDate
	}
	if patch.PolicyExpirationDate != nil {
		rec.PolicyExpirationDate = patch.PolicyExpirationDate
	}
	if patch.PolicyHolder != nil {
		rec.PolicyHolder = patch.PolicyHolder
	}
	if len(patch.Drivers) > 0 {
		rec.Drivers = patch.Drivers
	}
	if len(patch.Vehicles) > 0 {
		rec.Vehicles = patch.Vehicles
	}
	return rec
}
