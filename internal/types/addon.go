package types

import (
	ierr "github.com/membermatters/memberportal/internal/errors"
	"github.com/samber/lo"
)

// AddonType classifies what a billing group addon pays for. The
// additional_member type is priced per extra member beyond the group's
// included count.
type AddonType string

const (
	AddonTypeAdditionalMember AddonType = "additional_member"
	AddonTypeStorage          AddonType = "storage"
	AddonTypeLocker           AddonType = "locker"
	AddonTypeOther            AddonType = "other"
)

var AddonTypeValues = []AddonType{
	AddonTypeAdditionalMember,
	AddonTypeStorage,
	AddonTypeLocker,
	AddonTypeOther,
}

func (t AddonType) Validate() error {
	if !lo.Contains(AddonTypeValues, t) {
		return ierr.NewError("invalid addon type").
			WithHint("Invalid addon type").
			WithReportableDetails(map[string]any{
				"allowed_values": AddonTypeValues,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
