package service

import (
	"context"

	"github.com/membermatters/memberportal/internal/api/dto"
	"github.com/membermatters/memberportal/internal/domain/settings"
	ierr "github.com/membermatters/memberportal/internal/errors"
	"github.com/membermatters/memberportal/internal/types"
)

// SettingsService manages the operator billing defaults. References are
// checked on write but still resolved and re-validated at point of use,
// the catalog can change underneath them.
type SettingsService interface {
	GetSettings(ctx context.Context) (*settings.BillingSettings, error)
	UpdateSettings(ctx context.Context, req dto.UpdateSettingsRequest) (*settings.BillingSettings, error)
}

type settingsService struct {
	ServiceParams
}

func NewSettingsService(params ServiceParams) SettingsService {
	return &settingsService{ServiceParams: params}
}

func (s *settingsService) GetSettings(ctx context.Context) (*settings.BillingSettings, error) {
	cfg, err := s.SettingsRepo.Get(ctx)
	if err != nil {
		if ierr.IsNotFound(err) {
			return &settings.BillingSettings{
				ID:        types.GenerateUUID(),
				BaseModel: types.GetDefaultBaseModel(ctx),
			}, nil
		}
		return nil, err
	}
	return cfg, nil
}

func (s *settingsService) UpdateSettings(ctx context.Context, req dto.UpdateSettingsRequest) (*settings.BillingSettings, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cfg, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	if req.AdditionalMemberAddonID != nil && *req.AdditionalMemberAddonID != "" {
		a, err := s.AddonRepo.Get(ctx, *req.AdditionalMemberAddonID)
		if err != nil {
			return nil, err
		}
		if a.AddonType != types.AddonTypeAdditionalMember {
			return nil, ierr.NewError("addon is not an additional member addon").
				WithHint("The configured addon must be of the additional member type").
				WithReportableDetails(map[string]any{
					"addon_id":   a.ID,
					"addon_type": a.AddonType,
				}).
				Mark(ierr.ErrValidation)
		}
	}

	if req.DefaultPaymentPlanID != nil && *req.DefaultPaymentPlanID != "" {
		if _, err := s.PlanRepo.Get(ctx, *req.DefaultPaymentPlanID); err != nil {
			return nil, err
		}
	}

	req.ApplyTo(cfg)
	cfg.UpdatedBy = types.GetUserID(ctx)
	if err := s.SettingsRepo.Update(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
