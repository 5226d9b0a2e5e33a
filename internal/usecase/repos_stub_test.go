package usecase

import (
	"context"
	"time"

	"github.com/Vinoddhakad18/go-architecture/internal/core/domain"
	"github.com/Vinoddhakad18/go-architecture/internal/core/port"
	"github.com/Vinoddhakad18/go-architecture/internal/repository"
)

type fakeUserRepository struct {
	usersByID    map[string]domain.User
	createErr    error
	updateErr    error
	passwordErr  error
	passwordSets int
}

func newFakeUserRepository(users ...domain.User) *fakeUserRepository {
	repo := &fakeUserRepository{usersByID: make(map[string]domain.User)}
	for _, user := range users {
		repo.usersByID[user.ID] = user
	}
	return repo
}

func (r *fakeUserRepository) Create(_ context.Context, user domain.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.usersByID {
		if existing.Email == user.Email {
			return repository.ErrConflict
		}
	}
	r.usersByID[user.ID] = user
	return nil
}

func (r *fakeUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.usersByID[id]
	if !ok || user.DeletedAt != nil {
		return nil, repository.ErrNotFound
	}
	copied := user
	return &copied, nil
}

func (r *fakeUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.usersByID {
		if user.Email == email && user.DeletedAt == nil {
			copied := user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepository) Update(_ context.Context, user domain.User) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.usersByID[user.ID]; !ok {
		return repository.ErrNotFound
	}
	r.usersByID[user.ID] = user
	return nil
}

func (r *fakeUserRepository) UpdatePassword(_ context.Context, id, passwordHash string, changedAt time.Time) error {
	if r.passwordErr != nil {
		return r.passwordErr
	}
	user, ok := r.usersByID[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.LastPasswordChange = changedAt
	r.usersByID[id] = user
	r.passwordSets++
	return nil
}

func (r *fakeUserRepository) SoftDelete(_ context.Context, id string) error {
	user, ok := r.usersByID[id]
	if !ok || user.DeletedAt != nil {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	user.DeletedAt = &now
	r.usersByID[id] = user
	return nil
}

func (r *fakeUserRepository) List(_ context.Context, _ port.UserFilter) ([]domain.User, error) {
	users := make([]domain.User, 0, len(r.usersByID))
	for _, user := range r.usersByID {
		if user.DeletedAt == nil {
			users = append(users, user)
		}
	}
	return users, nil
}

type fakeProductRepository struct {
	productsByID map[string]domain.Product
	getCalls     int
	listCalls    int
}

func newFakeProductRepository(products ...domain.Product) *fakeProductRepository {
	repo := &fakeProductRepository{productsByID: make(map[string]domain.Product)}
	for _, product := range products {
		repo.productsByID[product.ID] = product
	}
	return repo
}

func (r *fakeProductRepository) Create(_ context.Context, product domain.Product) error {
	for _, existing := range r.productsByID {
		if existing.Code == product.Code && existing.DeletedAt == nil {
			return repository.ErrConflict
		}
	}
	r.productsByID[product.ID] = product
	return nil
}

func (r *fakeProductRepository) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.getCalls++
	product, ok := r.productsByID[id]
	if !ok || product.DeletedAt != nil {
		return nil, repository.ErrNotFound
	}
	copied := product
	return &copied, nil
}

func (r *fakeProductRepository) GetByCode(_ context.Context, code string) (*domain.Product, error) {
	r.getCalls++
	for _, product := range r.productsByID {
		if product.Code == code && product.DeletedAt == nil {
			copied := product
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeProductRepository) Update(_ context.Context, product domain.Product) error {
	if _, ok := r.productsByID[product.ID]; !ok {
		return repository.ErrNotFound
	}
	for _, existing := range r.productsByID {
		if existing.ID != product.ID && existing.Code == product.Code && existing.DeletedAt == nil {
			return repository.ErrConflict
		}
	}
	r.productsByID[product.ID] = product
	return nil
}

func (r *fakeProductRepository) SoftDelete(_ context.Context, id string) error {
	product, ok := r.productsByID[id]
	if !ok || product.DeletedAt != nil {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	product.DeletedAt = &now
	r.productsByID[id] = product
	return nil
}

func (r *fakeProductRepository) List(_ context.Context, filter domain.ProductFilter) (*domain.ProductPage, error) {
	r.listCalls++
	filter = filter.Normalize()
	items := make([]domain.Product, 0, len(r.productsByID))
	for _, product := range r.productsByID {
		if product.DeletedAt == nil {
			items = append(items, product)
		}
	}
	return &domain.ProductPage{
		Items: items,
		Total: len(items),
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

type fakeEventPublisher struct {
	registered      []domain.UserRegisteredEvent
	passwordChanged []domain.PasswordChangedEvent
	tokenRevoked    []domain.TokenRevokedEvent
	err             error
}

func (p *fakeEventPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	if p.err != nil {
		return p.err
	}
	p.registered = append(p.registered, event)
	return nil
}

func (p *fakeEventPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	if p.err != nil {
		return p.err
	}
	p.passwordChanged = append(p.passwordChanged, event)
	return nil
}

func (p *fakeEventPublisher) PublishTokenRevoked(_ context.Context, event domain.TokenRevokedEvent) error {
	if p.err != nil {
		return p.err
	}
	p.tokenRevoked = append(p.tokenRevoked, event)
	return nil
}

var (
	_ port.UserRepository    = (*fakeUserRepository)(nil)
	_ port.ProductRepository = (*fakeProductRepository)(nil)
	_ port.EventPublisher    = (*fakeEventPublisher)(nil)
	_ port.TTLStore          = (*fakeTTLStore)(nil)
)
