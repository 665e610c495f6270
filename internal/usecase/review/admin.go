package review

import (
	"context"
	"errors"
	"strings"

	"github.com/frosty865/VOFC-Engine-sub003/internal/ports"
)

var errOFCIDRequired = errors.New("ofc id is required")

type UpdateOFCInput struct {
	OFCID      uint64
	OptionText *string
	Discipline *string
}

// Admin CRUD over the production OFC table. These bypass the submission
// lifecycle on purpose: they correct already-promoted records.

func (s *Service) ListOFCs(ctx context.Context) ([]ports.OFCRecord, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	return s.catalog.ListOFCs(ctx)
}

func (s *Service) UpdateOFC(ctx context.Context, input UpdateOFCInput) (ports.OFCRecord, error) {
	if ctx == nil {
		return ports.OFCRecord{}, errors.New("context is required")
	}
	if input.OFCID == 0 {
		return ports.OFCRecord{}, errOFCIDRequired
	}
	if input.OptionText != nil && strings.TrimSpace(*input.OptionText) == "" {
		return ports.OFCRecord{}, errors.New("option_text cannot be empty")
	}

	update := ports.OFCUpdate{
		OptionText: input.OptionText,
		Discipline: input.Discipline,
	}
	if err := s.catalog.UpdateOFC(ctx, input.OFCID, update, nowUTCString()); err != nil {
		return ports.OFCRecord{}, err
	}
	return s.catalog.GetOFC(ctx, input.OFCID)
}

func (s *Service) DeleteOFC(ctx context.Context, ofcID uint64) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if ofcID == 0 {
		return errOFCIDRequired
	}
	return s.catalog.DeleteOFC(ctx, ofcID)
}
