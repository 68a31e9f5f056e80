package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/domain"
	"github.com/anshulag21/eaglehurst-platform-sub001/internal/platform/logger"
	"go.uber.org/zap"
)

// ProfileUsecase registers and updates the seller/buyer profiles the
// marketplace operations resolve callers against. Accounts themselves
// are issued elsewhere; this service only keys profiles by user id.
type ProfileUsecase struct {
	store  domain.UnitOfWork
	logger *logger.Logger
}

func NewProfileUsecase(store domain.UnitOfWork, log *logger.Logger) *ProfileUsecase {
	return &ProfileUsecase{store: store, logger: log.Named("ProfileUsecase")}
}

// RegisterSeller upserts the calling user's seller profile.
func (uc *ProfileUsecase) RegisterSeller(ctx context.Context, actor domain.Actor, practiceName, phone string) (*domain.Seller, error) {
	if !actor.IsSeller() {
		return nil, fmt.Errorf("%w: seller role required", domain.ErrForbidden)
	}

	var seller *domain.Seller
	err := uc.store.Within(ctx, func(r domain.Repositories) error {
		existing, err := r.Sellers().FindByUserID(ctx, actor.UserID)
		switch {
		case err == nil:
			if practiceName != "" {
				existing.PracticeName = practiceName
			}
			existing.Phone = phone
			if err := r.Sellers().Update(ctx, existing); err != nil {
				return fmt.Errorf("%w: failed to update seller profile: %v", domain.ErrRepository, err)
			}
			seller = existing
			return nil
		case errors.Is(err, domain.ErrNotFound):
			seller, err = domain.NewSeller(actor.UserID, practiceName, phone)
			if err != nil {
				return err
			}
			if err := r.Sellers().Create(ctx, seller); err != nil {
				return fmt.Errorf("%w: failed to create seller profile: %v", domain.ErrRepository, err)
			}
			return nil
		default:
			return fmt.Errorf("%w: failed to load seller profile: %v", domain.ErrRepository, err)
		}
	})
	if err != nil {
		uc.logger.Error("failed to register seller", zap.String("user_id", actor.UserID), zap.Error(err))
		return nil, err
	}
	uc.logger.Info("seller profile registered", zap.String("seller_id", seller.ID))
	return seller, nil
}

// RegisterBuyer upserts the calling user's buyer profile.
func (uc *ProfileUsecase) RegisterBuyer(ctx context.Context, actor domain.Actor, fullName, phone string) (*domain.Buyer, error) {
	if !actor.IsBuyer() {
		return nil, fmt.Errorf("%w: buyer role required", domain.ErrForbidden)
	}

	var buyer *domain.Buyer
	err := uc.store.Within(ctx, func(r domain.Repositories) error {
		existing, err := r.Buyers().FindByUserID(ctx, actor.UserID)
		switch {
		case err == nil:
			if fullName != "" {
				existing.FullName = fullName
			}
			existing.Phone = phone
			if err := r.Buyers().Update(ctx, existing); err != nil {
				return fmt.Errorf("%w: failed to update buyer profile: %v", domain.ErrRepository, err)
			}
			buyer = existing
			return nil
		case errors.Is(err, domain.ErrNotFound):
			buyer, err = domain.NewBuyer(actor.UserID, fullName, phone)
			if err != nil {
				return err
			}
			if err := r.Buyers().Create(ctx, buyer); err != nil {
				return fmt.Errorf("%w: failed to create buyer profile: %v", domain.ErrRepository, err)
			}
			return nil
		default:
			return fmt.Errorf("%w: failed to load buyer profile: %v", domain.ErrRepository, err)
		}
	})
	if err != nil {
		uc.logger.Error("failed to register buyer", zap.String("user_id", actor.UserID), zap.Error(err))
		return nil, err
	}
	uc.logger.Info("buyer profile registered", zap.String("buyer_id", buyer.ID))
	return buyer, nil
}
