package domain

// PolicyStatus представляет статус страхового полиса
type PolicyStatus string

const (
	PolicyStatusActive    PolicyStatus = "Active"
	PolicyStatusInactive  PolicyStatus = "Inactive"
	PolicyStatusCancelled PolicyStatus = "Cancelled"
	PolicyStatusExpired   PolicyStatus = "Expired"
	PolicyStatusPending   PolicyStatus = "Pending"
)

// ValidPolicyStatuses - множество допустимых статусов полиса
var ValidPolicyStatuses = map[PolicyStatus]struct{}{
	PolicyStatusActive:    {},
	PolicyStatusInactive:  {},
	PolicyStatusCancelled: {},
	PolicyStatusExpired:   {},
	PolicyStatusPending:   {},
}

// Gender представляет пол водителя
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// ValidGenders - множество допустимых значений пола
var ValidGenders = map[Gender]struct{}{
	GenderMale:   {},
	GenderFemale: {},
}

// MaritalStatus представляет семейное положение водителя
type MaritalStatus string

const (
	MaritalStatusSingle   MaritalStatus = "Single"
	MaritalStatusMarried  MaritalStatus = "Married"
	MaritalStatusDivorced MaritalStatus = "Divorced"
	MaritalStatusWidowed  MaritalStatus = "Widowed"
)

// ValidMaritalStatuses - множество допустимых семейных положений
var ValidMaritalStatuses = map[MaritalStatus]struct{}{
	MaritalStatusSingle:   {},
	MaritalStatusMarried:  {},
	MaritalStatusDivorced: {},
	MaritalStatusWidowed:  {},
}

// LicenseStatus представляет статус водительского удостоверения
type LicenseStatus string

const (
	LicenseStatusValid     LicenseStatus = "Valid"
	LicenseStatusExpired   LicenseStatus = "Expired"
	LicenseStatusSuspended LicenseStatus = "Suspended"
	LicenseStatusRevoked   LicenseStatus = "Revoked"
)

// ValidLicenseStatuses - множество допустимых статусов удостоверения
var ValidLicenseStatuses = map[LicenseStatus]struct{}{
	LicenseStatusValid:     {},
	LicenseStatusExpired:   {},
	LicenseStatusSuspended: {},
	LicenseStatusRevoked:   {},
}

// CoverageType представляет тип страхового покрытия
type CoverageType string

const (
	CoverageTypeLiability     CoverageType = "Liability"
	CoverageTypeCollision     CoverageType = "Collision"
	CoverageTypeComprehensive CoverageType = "Comprehensive"
)

// ValidCoverageTypes - множество допустимых типов покрытия
var ValidCoverageTypes = map[CoverageType]struct{}{
	CoverageTypeLiability:     {},
	CoverageTypeCollision:     {},
	CoverageTypeComprehensive: {},
}

// VehicleUsage представляет характер использования автомобиля
type VehicleUsage string

const (
	VehicleUsagePleasure  VehicleUsage = "Pleasure"
	VehicleUsageCommuting VehicleUsage = "Commuting"
	VehicleUsageBusiness  VehicleUsage = "Business"
	VehicleUsageFarm      VehicleUsage = "Farm"
)

// ValidVehicleUsages - множество допустимых видов использования
var ValidVehicleUsages = map[VehicleUsage]struct{}{
	VehicleUsagePleasure:  {},
	VehicleUsageCommuting: {},
	VehicleUsageBusiness:  {},
	VehicleUsageFarm:      {},
}

// Ownership представляет форму владения автомобилем
type Ownership string

const (
	OwnershipOwned    Ownership = "Owned"
	OwnershipLeased   Ownership = "Leased"
	OwnershipFinanced Ownership = "Financed"
)

// ValidOwnerships - множество допустимых форм владения
var ValidOwnerships = map[Ownership]struct{}{
	OwnershipOwned:    {},
	OwnershipLeased:   {},
	OwnershipFinanced: {},
}

// Address - почтовый адрес (страхователя или места хранения автомобиля)
type Address struct {
	Street string `json:"street" validate:"required,max=255"`
	City   string `json:"city" validate:"required,max=100"`
	State  string `json:"state" validate:"required,max=50"`
	Zip    string `json:"zip" validate:"required,max=10"`
}

// PolicyHolder - страхователь
// Не имеет собственного ID: принадлежит ровно одному полису
type PolicyHolder struct {
	FirstName string  `json:"firstName" validate:"required,max=100"`
	LastName  string  `json:"lastName" validate:"required,max=100"`
	Address   Address `json:"address"`
}

// FullName возвращает полное имя страхователя
func (h *PolicyHolder) FullName() string {
	return h.FirstName + " " + h.LastName
}

// Driver - водитель, вписанный в полис
// Порядок водителей в массиве сохраняется при редактировании
type Driver struct {
	FirstName             string        `json:"firstName" validate:"required,max=100"`
	LastName              string        `json:"lastName" validate:"required,max=100"`
	Age                   int           `json:"age" validate:"gte=16,lte=100"`
	Gender                Gender        `json:"gender" validate:"gender"`
	MaritalStatus         MaritalStatus `json:"maritalStatus" validate:"maritalStatus"`
	LicenseNumber         string        `json:"licenseNumber" validate:"required,max=50"`
	LicenseState          string        `json:"licenseState" validate:"required,max=10"`
	LicenseStatus         LicenseStatus `json:"licenseStatus" validate:"licenseStatus"`
	LicenseEffectiveDate  string        `json:"licenseEffectiveDate" validate:"required"`
	LicenseExpirationDate string        `json:"licenseExpirationDate" validate:"required"`
	LicenseClass          string        `json:"licenseClass" validate:"required,max=10"`
}

// Coverage - страховое покрытие автомобиля
// У автомобиля должно быть минимум одно покрытие
type Coverage struct {
	Type       CoverageType `json:"type" validate:"coverageType"`
	Limit      float64      `json:"limit" validate:"gte=0"`
	Deductible float64      `json:"deductible" validate:"gte=0"`
}

// Vehicle - застрахованный автомобиль
type Vehicle struct {
	Year            int          `json:"year" validate:"vehicleYear"`
	Make            string       `json:"make" validate:"required,max=50"`
	Model           string       `json:"model" validate:"required,max=50"`
	VIN             string       `json:"vin" validate:"len=17"`
	Usage           VehicleUsage `json:"usage" validate:"vehicleUsage"`
	PrimaryUse      string       `json:"primaryUse" validate:"required,max=100"`
	AnnualMileage   int          `json:"annualMileage" validate:"gte=0,lte=200000"`
	Ownership       Ownership    `json:"ownership" validate:"ownership"`
	GaragingAddress Address      `json:"garagingAddress"`
	Coverages       []Coverage   `json:"coverages" validate:"min=1,dive"`
}

// Policy - страховой полис: агрегат из страхователя, водителей и автомобилей
// ID, PolicyNo, CreatedAt, UpdatedAt и PolicyHolderName назначаются
// сервером и никогда не изменяются клиентом
type Policy struct {
	ID                   int64        `json:"id,omitempty"`
	PolicyNo             string       `json:"policyNo,omitempty"`
	PolicyStatus         PolicyStatus `json:"policyStatus"`
	PolicyType           string       `json:"policyType"`
	PolicyEffectiveDate  string       `json:"policyEffectiveDate"`
	PolicyExpirationDate string       `json:"policyExpirationDate"`
	PolicyHolder         PolicyHolder `json:"policyHolder"`
	Drivers              []Driver     `json:"drivers"`
	Vehicles             []Vehicle    `json:"vehicles"`
	CreatedAt            string       `json:"createdAt,omitempty"`
	UpdatedAt            string       `json:"updatedAt,omitempty"`
	PolicyHolderName     string       `json:"policyHolderName,omitempty"`
}

// PolicyForm - данные формы создания полиса (без серверных полей)
type PolicyForm struct {
	PolicyStatus         PolicyStatus `json:"policyStatus" validate:"policyStatus"`
	PolicyType           string       `json:"policyType" validate:"required,max=50"`
	PolicyEffectiveDate  string       `json:"policyEffectiveDate" validate:"required"`
	PolicyExpirationDate string       `json:"policyExpirationDate" validate:"required"`
	PolicyHolder         PolicyHolder `json:"policyHolder"`
	Drivers              []Driver     `json:"drivers" validate:"min=1,dive"`
	Vehicles             []Vehicle    `json:"vehicles" validate:"min=1,dive"`
}

// PolicyPatch - частичное обновление полиса
// Отсутствующие (nil или пустые) поля не отправляются на сервер
type PolicyPatch struct {
	PolicyStatus         *PolicyStatus `json:"policyStatus,omitempty" validate:"omitempty,policyStatus"`
	PolicyType           *string       `json:"policyType,omitempty" validate:"omitempty,max=50"`
	PolicyEffectiveDate  *string       `json:"policyEffectiveDate,omitempty"`
	PolicyExpirationDate *string       `json:"policyExpirationDate,omitempty"`
	PolicyHolder         *PolicyHolder `json:"policyHolder,omitempty"`
	Drivers              []Driver      `json:"drivers,omitempty" validate:"omitempty,min=1,dive"`
	Vehicles             []Vehicle     `json:"vehicles,omitempty" validate:"omitempty,min=1,dive"`
}

// PageInfo - метаданные пагинации списка полисов
// From/To - отображаемый диапазон (1-based); при пустом списке оба равны 0
type PageInfo struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	From        int `json:"from"`
	To          int `json:"to"`
}

// ListFilters - активные фильтры списка полисов
type ListFilters struct {
	Search  string `json:"search"`
	Status  string `json:"status"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
}

// ListFilterPatch - частичное изменение фильтров
type ListFilterPatch struct {
	Search  *string
	Status  *string
	Page    *int
	PerPage *int
}

// PolicyPage - страница списка полисов с метаданными
type PolicyPage struct {
	Data []Policy `json:"data"`
	Meta PageInfo `json:"meta"`
}

// DocumentLink - ссылка на сгенерированный PDF документ полиса
// Действительна для однократного скачивания
type DocumentLink struct {
	DownloadURL string `json:"download_url"`
	Message     string `json:"message,omitempty"`
}
