package commands

import (
	"context"

	"ticketgate/internal/domain/ticket"
	"ticketgate/internal/infra"
	"ticketgate/internal/pkg/errs"
	"ticketgate/internal/usecase/shared"
)

// Verification outcomes returned to the venue scanner.
const (
	VerifyValid    = "valid"
	VerifyTampered = "tampered"
	VerifyRedeemed = "redeemed"
	VerifyVoid     = "void"
)

type VerifyResult struct {
	Result    string
	UnitLabel string
}

type TicketCommands interface {
	// Verify checks a presented credential without consuming it.
	Verify(ctx context.Context, token string) (*VerifyResult, error)
	// Redeem verifies and atomically consumes the credential; a second
	// redeem attempt reports "redeemed".
	Redeem(ctx context.Context, token string) (*VerifyResult, error)
}

type ticketCommandsImpl struct {
	uow    shared.UnitOfWork
	issuer *ticket.Issuer
}

func NewTicketCommands(uow shared.UnitOfWork, issuer *ticket.Issuer) TicketCommands {
	return &ticketCommandsImpl{
		uow:    uow,
		issuer: issuer,
	}
}

func (t *ticketCommandsImpl) Verify(ctx context.Context, token string) (*VerifyResult, error) {
	var result *VerifyResult
	err := t.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		r, _, err := t.check(ctx, tx, token)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (t *ticketCommandsImpl) Redeem(ctx context.Context, token string) (*VerifyResult, error) {
	var result *VerifyResult
	err := t.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		r, st, err := t.check(ctx, tx, token)
		if err != nil {
			return err
		}
		if r.Result != VerifyValid {
			result = r
			return nil
		}

		// Conditional update: a racing scanner loses with zero rows and
		// reports the credential as already redeemed.
		affected, err := tx.SubTickets().Redeem(ctx, st.ID)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if affected == 0 {
			result = &VerifyResult{Result: VerifyRedeemed, UnitLabel: st.UnitLabel}
			return nil
		}

		result = &VerifyResult{Result: VerifyValid, UnitLabel: st.UnitLabel}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// check resolves the token against the stored credential. Any mismatch
// between token and stored fields is reported as tampered, never
// silently accepted.
func (t *ticketCommandsImpl) check(ctx context.Context, tx shared.Tx, token string) (*VerifyResult, *ticket.SubTicket, error) {
	decoded, err := ticket.DecodeToken(token)
	if err != nil {
		return &VerifyResult{Result: VerifyTampered}, nil, nil
	}

	st, err := tx.SubTickets().FindByID(ctx, decoded.SubTicketID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return &VerifyResult{Result: VerifyTampered}, nil, nil
		}
		return nil, nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	if decoded.OrderID != st.OrderID ||
		!decoded.IssuedAt.Equal(st.IssuedAt) ||
		decoded.Hash != st.ValidationHash {
		return &VerifyResult{Result: VerifyTampered, UnitLabel: st.UnitLabel}, nil, nil
	}
	if err := t.issuer.Verify(*st); err != nil {
		return &VerifyResult{Result: VerifyTampered, UnitLabel: st.UnitLabel}, nil, nil
	}

	switch st.Status {
	case ticket.StatusRedeemed:
		return &VerifyResult{Result: VerifyRedeemed, UnitLabel: st.UnitLabel}, st, nil
	case ticket.StatusVoid:
		return &VerifyResult{Result: VerifyVoid, UnitLabel: st.UnitLabel}, st, nil
	default:
		return &VerifyResult{Result: VerifyValid, UnitLabel: st.UnitLabel}, st, nil
	}
}
