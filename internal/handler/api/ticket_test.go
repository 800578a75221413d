//go:build unit

package api_test

import (
	"net/http"
	"testing"
	"time"

	"ticketgate/internal/handler/api"
	resdto "ticketgate/internal/handler/dto/response"
	"ticketgate/internal/infra"
	"ticketgate/internal/pkg/errs"
	"ticketgate/internal/usecase/commands"
	"ticketgate/internal/usecase/queries"
	"ticketgate/tests/common/httptest"
	commandsmock "ticketgate/tests/mock/commands"
	queriesmock "ticketgate/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type TicketHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockCtrl    *gomock.Controller
	mockTickets *commandsmock.MockTicketCommands
	mockQueries *queriesmock.MockTicketQueries
	handler     *api.TicketHandler
}

func (s *TicketHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockTickets = commandsmock.NewMockTicketCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockTicketQueries(s.mockCtrl)
	s.handler = api.NewTicketHandler(s.mockTickets, s.mockQueries)

	s.router.POST("/tickets/verify", s.handler.Verify)
	s.router.POST("/tickets/redeem", s.handler.Redeem)
	s.router.GET("/tickets", s.handler.ListTickets)
	s.router.GET("/tickets/:id", s.handler.GetTicket)
}

func TestTicketHandlerSuite(t *testing.T) {
	suite.Run(t, new(TicketHandlerTestSuite))
}

func (s *TicketHandlerTestSuite) TestVerify() {
	s.Run("valid credential", func() {
		s.SetupTest()
		s.mockTickets.EXPECT().
			Verify(gomock.Any(), "some-token").
			Return(&commands.VerifyResult{Result: commands.VerifyValid, UnitLabel: "A-1-1"}, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/tickets/verify", map[string]string{"token": "some-token"}, "")

		var resp resdto.VerifyResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
		s.Equal(commands.VerifyValid, resp.Result)
		s.Equal("A-1-1", resp.UnitLabel)
	})

	s.Run("tampered credential is a 200 with a tampered result", func() {
		s.SetupTest()
		s.mockTickets.EXPECT().
			Verify(gomock.Any(), "forged").
			Return(&commands.VerifyResult{Result: commands.VerifyTampered}, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/tickets/verify", map[string]string{"token": "forged"}, "")

		var resp resdto.VerifyResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
		s.Equal(commands.VerifyTampered, resp.Result)
	})

	s.Run("missing token fails binding", func() {
		s.SetupTest()
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/tickets/verify", map[string]string{}, "")
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("store failure", func() {
		s.SetupTest()
		s.mockTickets.EXPECT().
			Verify(gomock.Any(), "some-token").
			Return(nil, errs.Mark(errs.New("db down"), errs.ErrDatabaseOperationFailed))

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/tickets/verify", map[string]string{"token": "some-token"}, "")
		s.Equal(http.StatusInternalServerError, w.Code)
	})
}

func (s *TicketHandlerTestSuite) TestGetTicket() {
	s.Run("returns the credential view", func() {
		s.SetupTest()
		id := uuid.New()
		issuedAt := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
		s.mockQueries.EXPECT().
			GetByID(gomock.Any(), id).
			Return(&queries.SubTicketView{ID: id, UnitLabel: "A-1-1", Status: "issued", Token: "tok", IssuedAt: issuedAt}, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/tickets/"+id.String(), nil, "")

		var resp resdto.SubTicketResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
		s.Equal(id, resp.ID)
		s.Equal("A-1-1", resp.UnitLabel)
		s.Equal("issued", resp.Status)
	})

	s.Run("unknown id is a 404", func() {
		s.SetupTest()
		id := uuid.New()
		s.mockQueries.EXPECT().
			GetByID(gomock.Any(), id).
			Return(nil, infra.WrapRepoErr("sub-ticket not found", errs.New("no rows"), infra.KindNotFound))

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/tickets/"+id.String(), nil, "")
		s.Equal(http.StatusNotFound, w.Code)
	})

	s.Run("malformed id fails fast", func() {
		s.SetupTest()
		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/tickets/not-a-uuid", nil, "")
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *TicketHandlerTestSuite) TestListTickets() {
	s.Run("lists credentials for an order", func() {
		s.SetupTest()
		orderID := uuid.New()
		s.mockQueries.EXPECT().
			ListByOrder(gomock.Any(), orderID).
			Return([]*queries.SubTicketView{
				{ID: uuid.New(), UnitLabel: "A-1-1", Status: "issued"},
				{ID: uuid.New(), UnitLabel: "GA-0002", Status: "redeemed"},
			}, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/tickets?order_id="+orderID.String(), nil, "")

		var resp struct {
			Tickets []resdto.SubTicketResponse `json:"tickets"`
		}
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
		s.Len(resp.Tickets, 2)
	})

	s.Run("missing order_id fails fast", func() {
		s.SetupTest()
		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/tickets", nil, "")
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *TicketHandlerTestSuite) TestRedeem() {
	s.Run("consumes the credential", func() {
		s.SetupTest()
		s.mockTickets.EXPECT().
			Redeem(gomock.Any(), "some-token").
			Return(&commands.VerifyResult{Result: commands.VerifyValid, UnitLabel: "A-1-1"}, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/tickets/redeem", map[string]string{"token": "some-token"}, "")

		var resp resdto.VerifyResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
		s.Equal(commands.VerifyValid, resp.Result)
	})

	s.Run("second redemption reports redeemed", func() {
		s.SetupTest()
		s.mockTickets.EXPECT().
			Redeem(gomock.Any(), "some-token").
			Return(&commands.VerifyResult{Result: commands.VerifyRedeemed, UnitLabel: "A-1-1"}, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/tickets/redeem", map[string]string{"token": "some-token"}, "")

		var resp resdto.VerifyResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
		s.Equal(commands.VerifyRedeemed, resp.Result)
	})
}
