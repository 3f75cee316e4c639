package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// CategoryUseCase categorías y grupos. Son datos de referencia sin filial: cualquiera los
// lee, solo el administrador los escribe. No se borran, se desactivan.
type CategoryUseCase struct {
	repo repository.CategoryRepository
}

func NewCategoryUseCase(repo repository.CategoryRepository) *CategoryUseCase {
	return &CategoryUseCase{repo: repo}
}

func (uc *CategoryUseCase) CreateGroup(ctx context.Context, p entity.Principal, in dto.CreateCategoryGroupRequest) (*dto.CategoryGroupResponse, error) {
	if !p.IsAdmin {
		return nil, domain.ErrForbidden
	}
	name, err := referenceName(in.Name)
	if err != nil {
		return nil, err
	}
	group := &entity.CategoryGroup{
		ID:          uuid.New().String(),
		Name:        name,
		Description: in.Description,
		IsActive:    true,
		AuditInfo:   entity.NewAuditInfo(p.UserID, time.Now().UTC()),
	}
	if err := uc.repo.CreateGroup(ctx, group); err != nil {
		return nil, err
	}
	out := dto.FromCategoryGroup(group)
	return &out, nil
}

func (uc *CategoryUseCase) GetGroup(ctx context.Context, _ entity.Principal, id string) (*dto.CategoryGroupResponse, error) {
	group, err := uc.repo.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.FromCategoryGroup(group)
	return &out, nil
}

func (uc *CategoryUseCase) UpdateGroup(ctx context.Context, p entity.Principal, id string, in dto.UpdateCategoryGroupRequest) (*dto.CategoryGroupResponse, error) {
	if !p.IsAdmin {
		return nil, domain.ErrForbidden
	}
	group, err := uc.repo.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if group.Name, err = referenceName(*in.Name); err != nil {
			return nil, err
		}
	}
	if in.Description != nil {
		group.Description = *in.Description
	}
	if in.IsActive != nil {
		group.IsActive = *in.IsActive
	}
	group.Touch(p.UserID, time.Now().UTC())
	if err := uc.repo.UpdateGroup(ctx, group); err != nil {
		return nil, err
	}
	out := dto.FromCategoryGroup(group)
	return &out, nil
}

// DeactivateGroup baja lógica; las categorías del grupo siguen vigentes.
func (uc *CategoryUseCase) DeactivateGroup(ctx context.Context, p entity.Principal, id string) error {
	inactive := false
	_, err := uc.UpdateGroup(ctx, p, id, dto.UpdateCategoryGroupRequest{IsActive: &inactive})
	return err
}

func (uc *CategoryUseCase) ListGroups(ctx context.Context, p entity.Principal, includeInactive bool) ([]dto.CategoryGroupResponse, error) {
	list, err := uc.repo.ListGroups(ctx, includeInactive && p.IsAdmin)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryGroupResponse, 0, len(list))
	for _, g := range list {
		out = append(out, dto.FromCategoryGroup(g))
	}
	return out, nil
}

// Create crea una categoría. El grupo, si viene, debe existir y estar activo.
func (uc *CategoryUseCase) Create(ctx context.Context, p entity.Principal, in dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	if !p.IsAdmin {
		return nil, domain.ErrForbidden
	}
	name, err := referenceName(in.Name)
	if err != nil {
		return nil, err
	}
	groupID, err := uc.activeGroup(ctx, in.GroupID)
	if err != nil {
		return nil, err
	}
	category := &entity.Category{
		ID:          uuid.New().String(),
		GroupID:     groupID,
		Name:        name,
		Description: in.Description,
		IsActive:    true,
		AuditInfo:   entity.NewAuditInfo(p.UserID, time.Now().UTC()),
	}
	if err := uc.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	out := dto.FromCategory(category)
	return &out, nil
}

func (uc *CategoryUseCase) GetByID(ctx context.Context, _ entity.Principal, id string) (*dto.CategoryResponse, error) {
	category, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.FromCategory(category)
	return &out, nil
}

func (uc *CategoryUseCase) Update(ctx context.Context, p entity.Principal, id string, in dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	if !p.IsAdmin {
		return nil, domain.ErrForbidden
	}
	category, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.GroupID != nil {
		if category.GroupID, err = uc.activeGroup(ctx, in.GroupID); err != nil {
			return nil, err
		}
	}
	if in.Name != nil {
		if category.Name, err = referenceName(*in.Name); err != nil {
			return nil, err
		}
	}
	if in.Description != nil {
		category.Description = *in.Description
	}
	if in.IsActive != nil {
		category.IsActive = *in.IsActive
	}
	category.Touch(p.UserID, time.Now().UTC())
	if err := uc.repo.Update(ctx, category); err != nil {
		return nil, err
	}
	out := dto.FromCategory(category)
	return &out, nil
}

// Deactivate baja lógica. Los ítems conservan la referencia; no se pueden asignar nuevos.
func (uc *CategoryUseCase) Deactivate(ctx context.Context, p entity.Principal, id string) error {
	inactive := false
	_, err := uc.Update(ctx, p, id, dto.UpdateCategoryRequest{IsActive: &inactive})
	return err
}

func (uc *CategoryUseCase) List(ctx context.Context, p entity.Principal, in dto.CategoryListRequest) ([]dto.CategoryResponse, error) {
	list, err := uc.repo.List(ctx, repository.CategoryFilter{
		GroupID:         in.GroupID,
		IncludeInactive: in.IncludeInactive && p.IsAdmin,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, dto.FromCategory(c))
	}
	return out, nil
}

// activeGroup nil o vacío: sin grupo.
func (uc *CategoryUseCase) activeGroup(ctx context.Context, raw *string) (*string, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id := strings.TrimSpace(*raw)
	group, err := uc.repo.GetGroup(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.InvalidArgument("category group %s does not exist", id)
	}
	if err != nil {
		return nil, err
	}
	if !group.IsActive {
		return nil, domain.InvalidArgument("category group %s is inactive", group.Name)
	}
	return &id, nil
}

// SupplierUseCase proveedores, con las mismas reglas de acceso que las categorías.
type SupplierUseCase struct {
	repo repository.SupplierRepository
}

func NewSupplierUseCase(repo repository.SupplierRepository) *SupplierUseCase {
	return &SupplierUseCase{repo: repo}
}

func (uc *SupplierUseCase) Create(ctx context.Context, p entity.Principal, in dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	if !p.IsAdmin {
		return nil, domain.ErrForbidden
	}
	name, err := referenceName(in.Name)
	if err != nil {
		return nil, err
	}
	supplier := &entity.Supplier{
		ID:            uuid.New().String(),
		Name:          name,
		TaxID:         strings.TrimSpace(in.TaxID),
		ContactPerson: in.ContactPerson,
		PhoneNumber:   strings.TrimSpace(in.PhoneNumber),
		Email:         strings.TrimSpace(in.Email),
		IsActive:      true,
		AuditInfo:     entity.NewAuditInfo(p.UserID, time.Now().UTC()),
	}
	if err := uc.repo.Create(ctx, supplier); err != nil {
		return nil, err
	}
	out := dto.FromSupplier(supplier)
	return &out, nil
}

func (uc *SupplierUseCase) GetByID(ctx context.Context, _ entity.Principal, id string) (*dto.SupplierResponse, error) {
	supplier, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.FromSupplier(supplier)
	return &out, nil
}

func (uc *SupplierUseCase) Update(ctx context.Context, p entity.Principal, id string, in dto.UpdateSupplierRequest) (*dto.SupplierResponse, error) {
	if !p.IsAdmin {
		return nil, domain.ErrForbidden
	}
	supplier, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if supplier.Name, err = referenceName(*in.Name); err != nil {
			return nil, err
		}
	}
	if in.TaxID != nil {
		supplier.TaxID = strings.TrimSpace(*in.TaxID)
	}
	if in.ContactPerson != nil {
		supplier.ContactPerson = *in.ContactPerson
	}
	if in.PhoneNumber != nil {
		supplier.PhoneNumber = strings.TrimSpace(*in.PhoneNumber)
	}
	if in.Email != nil {
		supplier.Email = strings.TrimSpace(*in.Email)
	}
	if in.IsActive != nil {
		supplier.IsActive = *in.IsActive
	}
	supplier.Touch(p.UserID, time.Now().UTC())
	if err := uc.repo.Update(ctx, supplier); err != nil {
		return nil, err
	}
	out := dto.FromSupplier(supplier)
	return &out, nil
}

func (uc *SupplierUseCase) Deactivate(ctx context.Context, p entity.Principal, id string) error {
	inactive := false
	_, err := uc.Update(ctx, p, id, dto.UpdateSupplierRequest{IsActive: &inactive})
	return err
}

func (uc *SupplierUseCase) List(ctx context.Context, p entity.Principal, in dto.SupplierListRequest) (*dto.ListResponse[dto.SupplierResponse], error) {
	in.DefaultPage()
	list, err := uc.repo.List(ctx, repository.SupplierFilter{
		Search:          in.Search,
		IncludeInactive: in.IncludeInactive && p.IsAdmin,
		Page:            repository.Page{Limit: in.Limit, Offset: in.Offset},
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		items = append(items, dto.FromSupplier(s))
	}
	return &dto.ListResponse[dto.SupplierResponse]{Items: items, Page: dto.PageResponse{Limit: in.Limit, Offset: in.Offset}}, nil
}

func referenceName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", domain.InvalidArgument("name is required")
	}
	return name, nil
}
