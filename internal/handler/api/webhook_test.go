//go:build unit

package api_test

import (
	"net/http"
	"testing"

	"ticketgate/internal/handler/api"
	"ticketgate/internal/pkg/errs"
	"ticketgate/internal/usecase/commands"
	"ticketgate/tests/common/httptest"
	commandsmock "ticketgate/tests/mock/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type WebhookHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockPayments *commandsmock.MockPaymentCommands
	handler      *api.WebhookHandler
}

func (s *WebhookHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockPayments = commandsmock.NewMockPaymentCommands(s.mockCtrl)
	s.handler = api.NewWebhookHandler(s.mockPayments)

	s.router.POST("/webhooks/payments", s.handler.HandlePayment)
}

func TestWebhookHandlerSuite(t *testing.T) {
	suite.Run(t, new(WebhookHandlerTestSuite))
}

func (s *WebhookHandlerTestSuite) TestHandlePayment() {
	orderRef := uuid.New().String()

	s.Run("acknowledges an applied notification", func() {
		s.SetupTest()
		s.mockPayments.EXPECT().
			HandleNotification(gomock.Any(), commands.PaymentNotification{
				ExternalPaymentID: "pay_1",
				Status:            commands.PaymentStatusApproved,
				OrderReference:    orderRef,
			}).
			Return(&commands.NotificationAck{Outcome: commands.AckApplied}, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/webhooks/payments", map[string]any{
			"payment_id":      "pay_1",
			"status":          "approved",
			"order_reference": orderRef,
		}, "")

		s.Equal(http.StatusOK, w.Code)
		s.Contains(w.Body.String(), commands.AckApplied)
	})

	s.Run("unknown provider fields are tolerated", func() {
		s.SetupTest()
		s.mockPayments.EXPECT().
			HandleNotification(gomock.Any(), gomock.Any()).
			Return(&commands.NotificationAck{Outcome: commands.AckApplied}, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/webhooks/payments", map[string]any{
			"payment_id":      "pay_1",
			"status":          "approved",
			"order_reference": orderRef,
			"provider_extra":  map[string]any{"attempt": 3},
		}, "")

		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("malformed body is acknowledged as ignored", func() {
		s.SetupTest()
		// No HandleNotification call: garbage never reaches the usecase.
		w := httptest.PerformRawRequest(s.T(), s.router, http.MethodPost, "/webhooks/payments", "{not json")

		s.Equal(http.StatusOK, w.Code)
		s.Contains(w.Body.String(), commands.AckIgnored)
	})

	s.Run("store failure asks the provider to retry", func() {
		s.SetupTest()
		s.mockPayments.EXPECT().
			HandleNotification(gomock.Any(), gomock.Any()).
			Return(nil, errs.Mark(errs.New("db down"), errs.ErrDatabaseOperationFailed))

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/webhooks/payments", map[string]any{
			"payment_id":      "pay_1",
			"status":          "approved",
			"order_reference": orderRef,
		}, "")

		s.Equal(http.StatusInternalServerError, w.Code)
	})

	s.Run("replayed and ignored outcomes still return 200", func() {
		for _, outcome := range []string{commands.AckReplayed, commands.AckUnknownOrder, commands.AckIgnored} {
			s.SetupTest()
			s.mockPayments.EXPECT().
				HandleNotification(gomock.Any(), gomock.Any()).
				Return(&commands.NotificationAck{Outcome: outcome}, nil)

			w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/webhooks/payments", map[string]any{
				"payment_id":      "pay_1",
				"status":          "approved",
				"order_reference": orderRef,
			}, "")

			s.Equal(http.StatusOK, w.Code)
			s.Contains(w.Body.String(), outcome)
		}
	})
}
