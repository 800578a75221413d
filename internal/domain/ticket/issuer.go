package ticket

import (
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"golang.org/x/crypto/blake2b"
)

var (
	ErrTampered     = errors.New("credential hash mismatch")
	ErrInvalidToken = errors.New("malformed credential token")
)

// UnitInfo is the unit metadata folded into the validation hash.
type UnitInfo struct {
	ID         uuid.UUID
	Label      string
	Kind       string
	PriceCents int64
}

// Issuer derives tamper-evident sub-tickets. Issuance is a pure function
// of (order, unit, issuance time); the orchestrator guarantees it runs
// exactly once per unit, inside the pending->paid transition.
type Issuer struct {
	key []byte
}

func NewIssuer(secret string) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("issuer secret cannot be empty")
	}
	// blake2b accepts keys up to 64 bytes; fold longer secrets down.
	key := []byte(secret)
	if len(key) > 64 {
		sum := blake2b.Sum256(key)
		key = sum[:]
	}
	return &Issuer{key: key}, nil
}

func (i *Issuer) Issue(orderID uuid.UUID, unit UnitInfo, issuedAt time.Time) SubTicket {
	id := uuid.New()
	return SubTicket{
		ID:             id,
		OrderID:        orderID,
		UnitID:         unit.ID,
		UnitLabel:      unit.Label,
		UnitKind:       unit.Kind,
		PriceCents:     unit.PriceCents,
		ValidationHash: i.hash(orderID, id, issuedAt, unit.Label, unit.Kind, unit.PriceCents),
		Status:         StatusIssued,
		IssuedAt:       issuedAt.UTC(),
	}
}

// Verify recomputes the hash from the sub-ticket's own fields. A mismatch
// is never silently accepted.
func (i *Issuer) Verify(st SubTicket) error {
	expected := i.hash(st.OrderID, st.ID, st.IssuedAt, st.UnitLabel, st.UnitKind, st.PriceCents)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(st.ValidationHash)) != 1 {
		return ErrTampered
	}
	return nil
}

func (i *Issuer) hash(orderID, subTicketID uuid.UUID, issuedAt time.Time, label, kind string, priceCents int64) string {
	h, err := blake2b.New256(i.key)
	if err != nil {
		// Only reachable with a key over 64 bytes, which NewIssuer prevents.
		panic(err)
	}
	canonical := strings.Join([]string{
		orderID.String(),
		subTicketID.String(),
		strconv.FormatInt(issuedAt.UTC().Unix(), 10),
		label,
		kind,
		strconv.FormatInt(priceCents, 10),
	}, "|")
	h.Write([]byte(canonical))
	return hex.EncodeToString(h.Sum(nil))
}

// Token is the wire form a venue scanner presents: sub-ticket id, order id,
// issuance timestamp and hash, base64url-encoded.
type Token struct {
	SubTicketID uuid.UUID
	OrderID     uuid.UUID
	IssuedAt    time.Time
	Hash        string
}

func EncodeToken(st SubTicket) string {
	raw := fmt.Sprintf("%s|%s|%d|%s", st.ID, st.OrderID, st.IssuedAt.UTC().Unix(), st.ValidationHash)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func DecodeToken(token string) (Token, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Token{}, ErrInvalidToken
	}
	parts := strings.Split(string(raw), "|")
	if len(parts) != 4 {
		return Token{}, ErrInvalidToken
	}
	subTicketID, err := uuid.Parse(parts[0])
	if err != nil {
		return Token{}, ErrInvalidToken
	}
	orderID, err := uuid.Parse(parts[1])
	if err != nil {
		return Token{}, ErrInvalidToken
	}
	unix, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Token{}, ErrInvalidToken
	}
	return Token{
		SubTicketID: subTicketID,
		OrderID:     orderID,
		IssuedAt:    time.Unix(unix, 0).UTC(),
		Hash:        parts[3],
	}, nil
}
