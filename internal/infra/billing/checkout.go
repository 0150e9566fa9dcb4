package billing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/preference"

	"github.com/classicdental/dental-scheduler/internal/models"
)

var ErrDisabled = errors.New("checkout not configured")

const currency = "BRL"

type Link struct {
	PreferenceID string `json:"preferenceId"`
	InitPoint    string `json:"initPoint"`
}

// Checkout creates a hosted payment page for a booked treatment.
type Checkout interface {
	CreateLink(ctx context.Context, ap *models.Appointment, tr *models.Treatment) (*Link, error)
}

// New returns a Mercado Pago checkout, or Disabled without an access token.
// hc may be nil.
func New(accessToken, backURL string, hc *http.Client) (Checkout, error) {
	if accessToken == "" {
		return Disabled{}, nil
	}

	var opts []mpconfig.Option
	if hc != nil {
		opts = append(opts, mpconfig.WithHTTPClient(hc))
	}

	cfg, err := mpconfig.New(accessToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}

	return &MercadoPago{
		client:  preference.NewClient(cfg),
		backURL: backURL,
	}, nil
}

// ======================================================
// MERCADO PAGO
// ======================================================

type MercadoPago struct {
	client  preference.Client
	backURL string
}

func (m *MercadoPago) CreateLink(ctx context.Context, ap *models.Appointment, tr *models.Treatment) (*Link, error) {
	res, err := m.client.Create(ctx, m.request(ap, tr))
	if err != nil {
		return nil, fmt.Errorf("create preference: %w", err)
	}
	return &Link{PreferenceID: res.ID, InitPoint: res.InitPoint}, nil
}

func (m *MercadoPago) request(ap *models.Appointment, tr *models.Treatment) preference.Request {
	req := preference.Request{
		ExternalReference: "appointment-" + strconv.FormatUint(uint64(ap.ID), 10),
		Items: []preference.ItemRequest{
			{
				ID:          strconv.FormatUint(uint64(tr.ID), 10),
				Title:       tr.Name,
				Description: fmt.Sprintf("%s on %s at %s", tr.Name, ap.Date, ap.Time),
				Quantity:    1,
				UnitPrice:   tr.Price,
				CurrencyID:  currency,
			},
		},
	}

	if m.backURL != "" {
		req.BackURLs = &preference.BackURLsRequest{
			Success: m.backURL,
			Pending: m.backURL,
			Failure: m.backURL,
		}
		req.AutoReturn = "approved"
	}
	return req
}

type Disabled struct{}

func (Disabled) CreateLink(context.Context, *models.Appointment, *models.Treatment) (*Link, error) {
	return nil, ErrDisabled
}
