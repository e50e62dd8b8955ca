package payment

import (
	"context"
	"fmt"
	"time"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	mppayment "github.com/mercadopago/sdk-go/pkg/payment"

	"github.com/gearbook/car-service-api/internal/httperr"
)

// MercadoPagoCapturer charges through the Mercado Pago payments API.
// Capture is still synchronous; async confirmation via webhooks stays
// out of scope.
type MercadoPagoCapturer struct {
	client mppayment.Client
}

func NewMercadoPago(accessToken string) (*MercadoPagoCapturer, error) {
	cfg, err := mpconfig.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}

	return &MercadoPagoCapturer{
		client: mppayment.NewClient(cfg),
	}, nil
}

func (m *MercadoPagoCapturer) Capture(ctx context.Context, req CaptureRequest) (*Receipt, error) {
	res, err := m.client.Create(ctx, mppayment.Request{
		TransactionAmount: req.Amount,
		Description:       req.Description,
		PaymentMethodID:   "pix",
		Payer: &mppayment.PayerRequest{
			Email: req.PayerEmail,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("mercadopago create payment: %w", err)
	}

	if res.Status != "approved" && res.Status != "pending" {
		return nil, httperr.ErrBusiness(httperr.CodePaymentFailed)
	}

	return &Receipt{
		Reference:  fmt.Sprintf("mp-%d", res.ID),
		CapturedAt: time.Now(),
	}, nil
}
