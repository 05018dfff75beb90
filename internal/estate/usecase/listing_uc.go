package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/policy"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ListingUsecase owns Property.status: submission, pricing, media and
// verification.
type ListingUsecase struct {
	ledger  domain.Ledger
	storage domain.Storage
	fx      *Effects
	logger  *logger.Logger
}

func NewListingUsecase(ledger domain.Ledger, storage domain.Storage, fx *Effects, log *logger.Logger) *ListingUsecase {
	return &ListingUsecase{
		ledger:  ledger,
		storage: storage,
		fx:      fx,
		logger:  log.Named("listing_uc"),
	}
}

func (uc *ListingUsecase) Submit(ctx context.Context, actor domain.Actor, in domain.SubmitPropertyInput) (id string, err error) {
	ctx, end := uc.fx.begin(ctx, "ListingUsecase.Submit", actor)
	defer func() { end(err) }()

	if err := policy.Authorize(actor, policy.OpSubmit); err != nil {
		return "", err
	}
	p, err := domain.NewProperty(actor.ID, in)
	if err != nil {
		return "", err
	}
	if err := uc.ledger.CreateProperty(ctx, p); err != nil {
		uc.logger.Error("ListingUsecase.Submit: failed to create property", zap.String("seller_id", actor.ID), zap.Error(err))
		return "", err
	}

	uc.logger.Info("ListingUsecase.Submit: property submitted", zap.String("property_id", p.ID), zap.String("seller_id", actor.ID))
	uc.fx.publish(ctx, SubjectPropertySubmitted, newPropertyEvent(p, actor))
	return p.ID, nil
}

// SetPricing overwrites both agent amounts while the property is pending.
func (uc *ListingUsecase) SetPricing(ctx context.Context, actor domain.Actor, propertyID string, final, govt decimal.Decimal) (err error) {
	ctx, end := uc.fx.begin(ctx, "ListingUsecase.SetPricing", actor)
	defer func() { end(err) }()

	if err := policy.Authorize(actor, policy.OpSetPricing); err != nil {
		return err
	}
	if !final.IsPositive() || !govt.IsPositive() {
		return fmt.Errorf("%w: final and govt amounts must be positive", domain.ErrValidation)
	}

	var priced *domain.Property
	err = uc.ledger.WithinProperty(ctx, propertyID, func(ctx context.Context, tx domain.LedgerTx) error {
		p, err := tx.ReadProperty(ctx, propertyID)
		if err != nil {
			return err
		}
		if err := p.SetPricing(final, govt); err != nil {
			return err
		}
		if err := tx.WritePropertyIfUnchanged(ctx, p); err != nil {
			return err
		}
		priced = p
		return nil
	})
	if err != nil {
		return err
	}

	uc.logger.Info("ListingUsecase.SetPricing: pricing set",
		zap.String("property_id", propertyID),
		zap.String("final_amount", final.String()),
		zap.String("govt_amount", govt.String()),
		zap.String("agent_id", actor.ID))
	uc.fx.committed(ctx, propertyID, SubjectPropertyPriced, newPropertyEvent(priced, actor))
	return nil
}

// AttachImage stores the bytes and records the image on the property. A
// seller may only attach to their own listing.
func (uc *ListingUsecase) AttachImage(ctx context.Context, actor domain.Actor, propertyID, fileName string, data []byte) (img *domain.Image, err error) {
	ctx, end := uc.fx.begin(ctx, "ListingUsecase.AttachImage", actor)
	defer func() { end(err) }()

	if err := policy.Authorize(actor, policy.OpAttachImage); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: image data cannot be empty", domain.ErrValidation)
	}
	if ct := http.DetectContentType(data); !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("%w: upload is %s, not an image", domain.ErrValidation, ct)
	}

	// Checked before the upload and again inside the scope.
	current, err := uc.ledger.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if err := checkImageTarget(actor, current); err != nil {
		return nil, err
	}

	objectKey, url, err := uc.storage.Upload(ctx, fileName, data)
	if err != nil {
		uc.logger.Error("ListingUsecase.AttachImage: upload failed", zap.String("property_id", propertyID), zap.Error(err))
		return nil, fmt.Errorf("upload image: %w", err)
	}

	uploader := domain.UploadedByAgent
	if actor.Role == domain.RoleSeller {
		uploader = domain.UploadedBySeller
	}
	img = &domain.Image{
		PropertyID: propertyID,
		UploadedBy: uploader,
		UploaderID: actor.ID,
		ObjectKey:  objectKey,
		URL:        url,
		CreatedAt:  time.Now().UTC(),
	}

	err = uc.ledger.WithinProperty(ctx, propertyID, func(ctx context.Context, tx domain.LedgerTx) error {
		p, err := tx.ReadProperty(ctx, propertyID)
		if err != nil {
			return err
		}
		if err := checkImageTarget(actor, p); err != nil {
			return err
		}
		return tx.InsertImage(ctx, img)
	})
	if err != nil {
		uc.logger.Warn("ListingUsecase.AttachImage: image uploaded but not recorded",
			zap.String("property_id", propertyID), zap.String("object_key", objectKey), zap.Error(err))
		return nil, err
	}

	uc.logger.Info("ListingUsecase.AttachImage: image attached",
		zap.String("property_id", propertyID), zap.String("image_id", img.ID), zap.String("uploaded_by", string(uploader)))
	uc.fx.committed(ctx, propertyID, SubjectPropertyImageAttached, ImageEvent{
		ImageID:    img.ID,
		PropertyID: propertyID,
		UploadedBy: string(uploader),
		URL:        img.URL,
		OccurredAt: img.CreatedAt,
	})
	return img, nil
}

func checkImageTarget(actor domain.Actor, p *domain.Property) error {
	if actor.Role == domain.RoleSeller && p.SellerID != actor.ID {
		return fmt.Errorf("%w: property %s belongs to another seller", domain.ErrAuthorization, p.ID)
	}
	if p.Status == domain.StatusSold {
		return fmt.Errorf("%w: property %s is sold", domain.ErrConflict, p.ID)
	}
	return nil
}

// Verify promotes a pending, priced property with at least one image to live
// and assigns the verifying agent.
func (uc *ListingUsecase) Verify(ctx context.Context, actor domain.Actor, propertyID string) (err error) {
	ctx, end := uc.fx.begin(ctx, "ListingUsecase.Verify", actor)
	defer func() { end(err) }()

	if err := policy.Authorize(actor, policy.OpVerify); err != nil {
		return err
	}

	var verified *domain.Property
	err = uc.ledger.WithinProperty(ctx, propertyID, func(ctx context.Context, tx domain.LedgerTx) error {
		p, err := tx.ReadProperty(ctx, propertyID)
		if err != nil {
			return err
		}
		images, err := tx.CountImagesFor(ctx, propertyID)
		if err != nil {
			return err
		}
		if err := p.Verify(actor.ID, images); err != nil {
			return err
		}
		if err := tx.WritePropertyIfUnchanged(ctx, p); err != nil {
			return err
		}
		verified = p
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrPrecondition) {
			uc.logger.Info("ListingUsecase.Verify: property not ready", zap.String("property_id", propertyID), zap.Error(err))
		}
		return err
	}

	uc.logger.Info("ListingUsecase.Verify: property is live", zap.String("property_id", propertyID), zap.String("agent_id", actor.ID))
	uc.fx.committed(ctx, propertyID, SubjectPropertyVerified, newPropertyEvent(verified, actor))
	uc.fx.notifySeller(ctx, verified.SellerID,
		"Your property is live",
		fmt.Sprintf("Your listing %q has been verified and is now visible to buyers.", verified.Title))
	return nil
}
