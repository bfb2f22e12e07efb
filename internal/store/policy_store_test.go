package store

import (
	"context"
	"errors"
	"testing"

	"github.com/frontandrew/insura/internal/domain"
	"github.com/frontandrew/insura/internal/pkg/logger"
	"github.com/frontandrew/insura/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPolicyGateway - мок шлюза API для тестов store
type MockPolicyGateway struct {
	mock.Mock
}

func (m *MockPolicyGateway) List(ctx context.Context, filters domain.ListFilters) (*domain.PolicyPage, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PolicyPage), args.Error(1)
}

func (m *MockPolicyGateway) Get(ctx context.Context, id int64) (*domain.Policy, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Policy), args.Error(1)
}

func (m *MockPolicyGateway) Create(ctx context.Context, record wire.Record) (*domain.Policy, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Policy), args.Error(1)
}

func (m *MockPolicyGateway) Update(ctx context.Context, id int64, record wire.Record) (*domain.Policy, error) {
	args := m.Called(ctx, id, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Policy), args.Error(1)
}

func (m *MockPolicyGateway) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPolicyGateway) GenerateDocument(ctx context.Context, id int64) (*domain.DocumentLink, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DocumentLink), args.Error(1)
}

// testPolicy возвращает сохраненный на сервере полис с указанным id
func testPolicy(id int64, status domain.PolicyStatus) domain.Policy {
	return domain.Policy{
		ID:                   id,
		PolicyNo:             "POL-000042",
		PolicyStatus:         status,
		PolicyType:           "Auto",
		PolicyEffectiveDate:  "2026-01-01",
		PolicyExpirationDate: "2027-01-01",
		PolicyHolder: domain.PolicyHolder{
			FirstName: "John",
			LastName:  "Smith",
			Address: domain.Address{
				Street: "123 Main St", City: "Springfield", State: "IL", Zip: "62704",
			},
		},
		Drivers: []domain.Driver{{
			FirstName: "John", LastName: "Smith", Age: 35,
			Gender: domain.GenderMale, MaritalStatus: domain.MaritalStatusMarried,
			LicenseNumber: "D1234567", LicenseState: "IL",
			LicenseStatus:        domain.LicenseStatusValid,
			LicenseEffectiveDate: "2020-05-01", LicenseExpirationDate: "2028-05-01",
			LicenseClass: "C",
		}},
		Vehicles: []domain.Vehicle{{
			Year: 2022, Make: "Toyota", Model: "Camry",
			VIN: "1HGBH41JXMN109186", Usage: domain.VehicleUsageCommuting,
			PrimaryUse: "Commute to work", AnnualMileage: 12000,
			Ownership: domain.OwnershipOwned,
			GaragingAddress: domain.Address{
				Street: "123 Main St", City: "Springfield", State: "IL", Zip: "62704",
			},
			Coverages: []domain.Coverage{{Type: domain.CoverageTypeLiability, Limit: 100000, Deductible: 500}},
		}},
		PolicyHolderName: "John Smith",
	}
}

// testForm возвращает валидную форму создания полиса
func testForm() *domain.PolicyForm {
	p := testPolicy(0, domain.PolicyStatusActive)
	return &domain.PolicyForm{
		PolicyStatus:         p.PolicyStatus,
		PolicyType:           p.PolicyType,
		PolicyEffectiveDate:  p.PolicyEffectiveDate,
		PolicyExpirationDate: p.PolicyExpirationDate,
		PolicyHolder:         p.PolicyHolder,
		Drivers:              p.Drivers,
		Vehicles:             p.Vehicles,
	}
}

// newTestStore создает store с мок-шлюзом
func newTestStore(t *testing.T) (*PolicyStore, *MockPolicyGateway) {
	t.Helper()
	gw := new(MockPolicyGateway)
	return New(gw, logger.NewNoop()), gw
}

// seedItems наполняет store страницей полисов через RefreshList
func seedItems(t *testing.T, s *PolicyStore, gw *MockPolicyGateway, policies ...domain.Policy) {
	t.Helper()
	gw.On("List", mock.Anything, mock.Anything).
		Return(&domain.PolicyPage{
			Data: policies,
			Meta: domain.PageInfo{CurrentPage: 1, LastPage: 1, PerPage: 15, Total: len(policies), From: 1, To: len(policies)},
		}, nil).Once()

	require.NoError(t, s.RefreshList(context.Background()))
}

// TestPolicyStore_RefreshList тестирует загрузку списка
func TestPolicyStore_RefreshList(t *testing.T) {
	t.Run("успешная загрузка заменяет items и pageInfo", func(t *testing.T) {
		s, gw := newTestStore(t)
		page := &domain.PolicyPage{
			Data: []domain.Policy{testPolicy(1, domain.PolicyStatusActive)},
			Meta: domain.PageInfo{CurrentPage: 1, LastPage: 2, PerPage: 15, Total: 18, From: 1, To: 15},
		}
		gw.On("List", mock.Anything, s.Filters()).Return(page, nil)

		require.NoError(t, s.RefreshList(context.Background()))

		assert.Len(t, s.Items(), 1)
		assert.Equal(t, 18, s.PageInfo().Total)
		assert.False(t, s.IsLoading())
		assert.Empty(t, s.LastError())
	})

	t.Run("ошибка не трогает items", func(t *testing.T) {
		s, gw := newTestStore(t)
		seedItems(t, s, gw, testPolicy(1, domain.PolicyStatusActive))

		gw.On("List", mock.Anything, mock.Anything).
			Return(nil, errors.New("network down")).Once()

		err := s.RefreshList(context.Background())

		require.Error(t, err)
		assert.Len(t, s.Items(), 1, "items must stay unchanged on failure")
		assert.Equal(t, "network down", s.LastError())
		assert.False(t, s.IsLoading(), "isLoading must resolve even on failure")
	})
}

// TestPolicyStore_Create тестирует оптимистичное создание полиса
func TestPolicyStore_Create(t *testing.T) {
	t.Run("успех добавляет полис в начало списка", func(t *testing.T) {
		s, gw := newTestStore(t)
		seedItems(t, s, gw, testPolicy(1, domain.PolicyStatusActive))

		created := testPolicy(42, domain.PolicyStatusActive)
		gw.On("Create", mock.Anything, mock.AnythingOfType("wire.Record")).
			Return(&created, nil)

		policy, err := s.Create(context.Background(), testForm())

		require.NoError(t, err)
		assert.Equal(t, int64(42), policy.ID)

		items := s.Items()
		require.Len(t, items, 2, "items length must grow by exactly 1")
		assert.Equal(t, int64(42), items[0].ID, "created policy must be first")
	})

	t.Run("ошибка сервера оставляет items нетронутыми", func(t *testing.T) {
		s, gw := newTestStore(t)
		seedItems(t, s, gw, testPolicy(1, domain.PolicyStatusActive))

		gw.On("Create", mock.Anything, mock.Anything).
			Return(nil, errors.New("boom"))

		_, err := s.Create(context.Background(), testForm())

		require.Error(t, err)
		assert.Len(t, s.Items(), 1)
		assert.False(t, s.IsLoading())
	})

	t.Run("невалидная форма отклоняется без сетевого вызова", func(t *testing.T) {
		s, gw := newTestStore(t)

		form := testForm()
		form.Drivers = nil

		_, err := s.Create(context.Background(), form)

		require.Error(t, err)
		vErr, ok := domain.AsValidationError(err)
		require.True(t, ok)
		assert.Contains(t, vErr.Errors, "drivers")

		assert.False(t, s.IsLoading())
		gw.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("422 от сервера неотличим от локальной валидации", func(t *testing.T) {
		s, gw := newTestStore(t)

		remoteErr := domain.NewValidationError("The given data was invalid.", domain.FieldErrors{
			"policy_type": {"The policy type field is required."},
		})
		gw.On("Create", mock.Anything, mock.Anything).Return(nil, remoteErr)

		_, err := s.Create(context.Background(), testForm())

		require.Error(t, err)
		_, ok := domain.AsValidationError(err)
		assert.True(t, ok)
		assert.Empty(t, s.Items())
	})
}

// TestPolicyStore_Update тестирует согласованность items и current
func TestPolicyStore_Update(t *testing.T) {
	t.Run("обновляются оба представления", func(t *testing.T) {
		s, gw := newTestStore(t)
		seedItems(t, s, gw,
			testPolicy(7, domain.PolicyStatusActive),
			testPolicy(8, domain.PolicyStatusPending),
		)

		opened := testPolicy(7, domain.PolicyStatusActive)
		gw.On("Get", mock.Anything, int64(7)).Return(&opened, nil)
		_, err := s.LoadOne(context.Background(), 7)
		require.NoError(t, err)

		updated := testPolicy(7, domain.PolicyStatusCancelled)
		gw.On("Update", mock.Anything, int64(7), mock.Anything).Return(&updated, nil)

		status := domain.PolicyStatusCancelled
		_, err = s.Update(context.Background(), 7, &domain.PolicyPatch{PolicyStatus: &status})
		require.NoError(t, err)

		items := s.Items()
		assert.Equal(t, domain.PolicyStatusCancelled, items[0].PolicyStatus)
		assert.Equal(t, int64(7), items[0].ID, "position in items must be preserved")
		assert.Equal(t, domain.PolicyStatusPending, items[1].PolicyStatus, "other entries must not change")

		require.NotNil(t, s.Current())
		assert.Equal(t, domain.PolicyStatusCancelled, s.Current().PolicyStatus)
	})

	t.Run("чужой current не трогается", func(t *testing.T) {
		s, gw := newTestStore(t)
		seedItems(t, s, gw, testPolicy(7, domain.PolicyStatusActive))

		opened := testPolicy(9, domain.PolicyStatusPending)
		gw.On("Get", mock.Anything, int64(9)).Return(&opened, nil)
		_, err := s.LoadOne(context.Background(), 9)
		require.NoError(t, err)

		updated := testPolicy(7, domain.PolicyStatusCancelled)
		gw.On("Update", mock.Anything, int64(7), mock.Anything).Return(&updated, nil)

		status := domain.PolicyStatusCancelled
		_, err = s.Update(context.Background(), 7, &domain.PolicyPatch{PolicyStatus: &status})
		require.NoError(t, err)

		require.NotNil(t, s.Current())
		assert.Equal(t, int64(9), s.Current().ID)
		assert.Equal(t, domain.PolicyStatusPending, s.Current().PolicyStatus)
	})
}

// TestPolicyStore_Delete тестирует удаление из обоих представлений
func TestPolicyStore_Delete(t *testing.T) {
	t.Run("удаляется из items и current", func(t *testing.T) {
		s, gw := newTestStore(t)
		seedItems(t, s, gw,
			testPolicy(7, domain.PolicyStatusActive),
			testPolicy(8, domain.PolicyStatusPending),
		)

		opened := testPolicy(7, domain.PolicyStatusActive)
		gw.On("Get", mock.Anything, int64(7)).Return(&opened, nil)
		_, err := s.LoadOne(context.Background(), 7)
		require.NoError(t, err)

		gw.On("Delete", mock.Anything, int64(7)).Return(nil)

		require.NoError(t, s.Delete(context.Background(), 7))

		items := s.Items()
		require.Len(t, items, 1)
		assert.Equal(t, int64(8), items[0].ID)
		assert.Nil(t, s.Current(), "current must be cleared when it matched")
	})

	t.Run("current другого полиса сохраняется", func(t *testing.T) {
		s, gw := newTestStore(t)
		seedItems(t, s, gw,
			testPolicy(7, domain.PolicyStatusActive),
			testPolicy(8, domain.PolicyStatusPending),
		)

		opened := testPolicy(8, domain.PolicyStatusPending)
		gw.On("Get", mock.Anything, int64(8)).Return(&opened, nil)
		_, err := s.LoadOne(context.Background(), 8)
		require.NoError(t, err)

		gw.On("Delete", mock.Anything, int64(7)).Return(nil)
		require.NoError(t, s.Delete(context.Background(), 7))

		require.NotNil(t, s.Current())
		assert.Equal(t, int64(8), s.Current().ID)
	})

	t.Run("ошибка оставляет оба представления", func(t *testing.T) {
		s, gw := newTestStore(t)
		seedItems(t, s, gw, testPolicy(7, domain.PolicyStatusActive))

		gw.On("Delete", mock.Anything, int64(7)).Return(errors.New("boom"))

		require.Error(t, s.Delete(context.Background(), 7))
		assert.Len(t, s.Items(), 1)
		assert.Equal(t, "boom", s.LastError())
	})
}

// TestPolicyStore_GenerateDocument тестирует сквозную генерацию PDF
func TestPolicyStore_GenerateDocument(t *testing.T) {
	t.Run("возвращает ссылку без мутации состояния", func(t *testing.T) {
		s, gw := newTestStore(t)
		seedItems(t, s, gw, testPolicy(7, domain.PolicyStatusActive))

		gw.On("GenerateDocument", mock.Anything, int64(7)).
			Return(&domain.DocumentLink{DownloadURL: "http://localhost:8000/api/documents/abc"}, nil)

		url, err := s.GenerateDocument(context.Background(), 7)

		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8000/api/documents/abc", url)
		assert.Len(t, s.Items(), 1)
		assert.False(t, s.IsLoading())
	})

	t.Run("ошибка не блокирует последующие операции", func(t *testing.T) {
		s, gw := newTestStore(t)

		gw.On("GenerateDocument", mock.Anything, int64(7)).
			Return(nil, errors.New("pdf failed"))
		gw.On("List", mock.Anything, mock.Anything).
			Return(&domain.PolicyPage{Data: []domain.Policy{}, Meta: domain.PageInfo{CurrentPage: 1, LastPage: 1, PerPage: 15}}, nil)

		_, err := s.GenerateDocument(context.Background(), 7)
		require.Error(t, err)
		assert.Equal(t, "pdf failed", s.LastError())

		assert.NoError(t, s.RefreshList(context.Background()))
		assert.Empty(t, s.LastError())
	})
}

// TestPolicyStore_SetFilters тестирует слияние фильтров
func TestPolicyStore_SetFilters(t *testing.T) {
	s, _ := newTestStore(t)

	search := "POL-42"
	s.SetFilters(domain.ListFilterPatch{Search: &search})

	filters := s.Filters()
	assert.Equal(t, "POL-42", filters.Search)
	assert.Equal(t, 1, filters.Page, "untouched fields keep their values")
	assert.Equal(t, 15, filters.PerPage)

	page := 3
	status := "Active"
	s.SetFilters(domain.ListFilterPatch{Page: &page, Status: &status})

	filters = s.Filters()
	assert.Equal(t, "POL-42", filters.Search)
	assert.Equal(t, "Active", filters.Status)
	assert.Equal(t, 3, filters.Page)
}
