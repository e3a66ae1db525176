package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Noore22/Cake-Craft/internal/repositories"
)

var (
	// ErrCartInvalidInput indicates a cake that cannot be placed in the cart.
	ErrCartInvalidInput = errors.New("cart: invalid input")
	// ErrCartItemNotFound indicates the referenced cake is not in the cart.
	ErrCartItemNotFound = errors.New("cart: item not found")
	// ErrCartUnavailable indicates the cart mirror could not be read or written.
	ErrCartUnavailable = errors.New("cart: repository unavailable")
)

// CartServiceDeps bundles collaborators required to construct the cart service.
type CartServiceDeps struct {
	Cart        repositories.CartRepository
	Pricing     *PricingEngine
	UnitOfWork  repositories.UnitOfWork
	IDGenerator func() string
	Logger      func(ctx context.Context, event string, fields map[string]any)
}

type cartService struct {
	cart       repositories.CartRepository
	pricing    *PricingEngine
	unitOfWork repositories.UnitOfWork
	newID      func() string
	logger     func(context.Context, string, map[string]any)
}

// NewCartService wires the cart mirror and pricing rules.
func NewCartService(deps CartServiceDeps) (CartService, error) {
	if deps.Cart == nil {
		return nil, errors.New("cart service: cart repository is required")
	}
	if deps.Pricing == nil {
		return nil, errors.New("cart service: pricing engine is required")
	}
	unit := deps.UnitOfWork
	if unit == nil {
		unit = noopUnitOfWork{}
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return uuid.NewString() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &cartService{
		cart:       deps.Cart,
		pricing:    deps.Pricing,
		unitOfWork: unit,
		newID:      idGen,
		logger:     logger,
	}, nil
}

func (s *cartService) Get(ctx context.Context) ([]CustomCake, error) {
	cakes, err := s.cart.Load(ctx)
	if err != nil {
		return nil, mapCartRepositoryError(err)
	}
	return cakes, nil
}

// Add appends the cake. The price is recomputed from its selections, and a
// missing or duplicate id is replaced with a fresh one.
func (s *cartService) Add(ctx context.Context, cake CustomCake) ([]CustomCake, error) {
	if err := validateCake(cake); err != nil {
		return nil, err
	}
	cake.TotalPrice = s.pricing.ComputePrice(configurationOf(cake))

	var out []CustomCake
	err := s.unitOfWork.RunInTx(ctx, func(txCtx context.Context) error {
		cakes, err := s.cart.Load(txCtx)
		if err != nil {
			return mapCartRepositoryError(err)
		}
		cake.ID = strings.TrimSpace(cake.ID)
		if cake.ID == "" || containsCake(cakes, cake.ID) {
			cake.ID = s.newID()
		}
		cakes = append(cakes, cake)
		if err := s.cart.Save(txCtx, cakes); err != nil {
			return mapCartRepositoryError(err)
		}
		out = cakes
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger(ctx, "cart.item.added", map[string]any{
		"cakeID": cake.ID,
		"items":  len(out),
		"price":  cake.TotalPrice.StringFixed(2),
	})
	return out, nil
}

func (s *cartService) Remove(ctx context.Context, cakeID string) ([]CustomCake, error) {
	cakeID = strings.TrimSpace(cakeID)
	if cakeID == "" {
		return nil, fmt.Errorf("%w: cake id is required", ErrCartInvalidInput)
	}
	var out []CustomCake
	err := s.unitOfWork.RunInTx(ctx, func(txCtx context.Context) error {
		cakes, err := s.cart.Load(txCtx)
		if err != nil {
			return mapCartRepositoryError(err)
		}
		kept := make([]CustomCake, 0, len(cakes))
		for _, cake := range cakes {
			if cake.ID != cakeID {
				kept = append(kept, cake)
			}
		}
		if len(kept) == len(cakes) {
			return fmt.Errorf("%w: %s", ErrCartItemNotFound, cakeID)
		}
		if err := s.cart.Save(txCtx, kept); err != nil {
			return mapCartRepositoryError(err)
		}
		out = kept
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *cartService) Clear(ctx context.Context) error {
	return s.unitOfWork.RunInTx(ctx, func(txCtx context.Context) error {
		return mapCartRepositoryError(s.cart.Save(txCtx, []CustomCake{}))
	})
}

func (s *cartService) Estimate(ctx context.Context, couponCode string) (CheckoutQuote, error) {
	cakes, err := s.Get(ctx)
	if err != nil {
		return CheckoutQuote{}, err
	}
	return s.pricing.Quote(cakes, couponCode), nil
}

func validateCake(cake CustomCake) error {
	switch {
	case strings.TrimSpace(cake.Base.ID) == "":
		return fmt.Errorf("%w: base is required", ErrCartInvalidInput)
	case strings.TrimSpace(cake.Shape.ID) == "" || strings.TrimSpace(cake.Size.ID) == "":
		return fmt.Errorf("%w: shape and size are required", ErrCartInvalidInput)
	case strings.TrimSpace(cake.Frosting.ID) == "":
		return fmt.Errorf("%w: frosting is required", ErrCartInvalidInput)
	}
	return nil
}

func containsCake(cakes []CustomCake, id string) bool {
	for _, cake := range cakes {
		if cake.ID == id {
			return true
		}
	}
	return false
}

func mapCartRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrCartItemNotFound, err)
		case repoErr.IsUnavailable(), repoErr.IsConflict():
			return fmt.Errorf("%w: %v", ErrCartUnavailable, err)
		}
	}
	return err
}

type noopUnitOfWork struct{}

func (noopUnitOfWork) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}
