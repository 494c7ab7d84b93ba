package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"chequeprint/internal/certified/handler/mocks"
	"chequeprint/internal/certified/models"
	"chequeprint/internal/certified/service"
	cbmodels "chequeprint/internal/checkbook/models"
	dErrors "chequeprint/pkg/domain-errors"
	"chequeprint/pkg/requestcontext"
	"chequeprint/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/certified-mocks.go -package=mocks Service
type CertifiedHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
}

func TestCertifiedHandlerSuite(t *testing.T) {
	suite.Run(t, new(CertifiedHandlerSuite))
}

func (s *CertifiedHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = chi.NewRouter()
	New(s.service, logger).Register(s.router)
}

func (s *CertifiedHandlerSuite) do(perms []requestcontext.Permission, method, path string, body any) *httptest.ResponseRecorder {
	req := testutil.WithOperator(testutil.NewJSONRequest(s.T(), method, path, body), "teller-7", perms...)
	return testutil.DoRequest(s.router, req)
}

func (s *CertifiedHandlerSuite) errorBody(w *httptest.ResponseRecorder) map[string]string {
	return testutil.UnmarshalErrorResponse(s.T(), w)
}

func operator(perms ...requestcontext.Permission) []requestcontext.Permission {
	return perms
}

// =============================================================================
// Preview
// =============================================================================

func (s *CertifiedHandlerSuite) TestPreview() {
	s.Run("returns the proposed range", func() {
		s.service.EXPECT().PreviewRange(gomock.Any(), "b1", service.PreviewOptions{NumberOfBooks: 2}).Return(&models.Preview{
			Range:          models.SerialRange{BranchID: "b1", FirstSerial: 1051, LastSerial: 1150, NumberOfBooks: 2, LeavesPerBook: 50},
			LastCommitted:  &models.SerialRange{BranchID: "b1", FirstSerial: 1001, LastSerial: 1050, NumberOfBooks: 1, LeavesPerBook: 50},
			StockAvailable: 900,
		}, nil)

		w := s.do(operator(), http.MethodPost, "/certified/branches/b1/preview", map[string]any{"number_of_books": 2})
		s.Equal(http.StatusOK, w.Code)
		var resp PreviewResponse
		s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
		s.Equal(int64(1051), resp.FirstSerial)
		s.Equal(int64(1150), resp.LastSerial)
		s.Equal(int64(100), resp.TotalChecks)
		s.Require().NotNil(resp.LastCommitted)
		s.Equal(int64(1050), resp.LastCommitted.LastSerial)
	})

	s.Run("book count out of range never reaches the service", func() {
		w := s.do(operator(), http.MethodPost, "/certified/branches/b1/preview", map[string]any{"number_of_books": 101})
		testutil.AssertStatusAndError(s.T(), w, http.StatusBadRequest, "validation_error")
	})

	s.Run("unknown branch", func() {
		s.service.EXPECT().PreviewRange(gomock.Any(), "zz", gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeNotFound, `branch "zz" not found`))
		w := s.do(operator(), http.MethodPost, "/certified/branches/zz/preview", map[string]any{"number_of_books": 1})
		s.Equal(http.StatusNotFound, w.Code)
	})
}

// =============================================================================
// Commit
// =============================================================================

func (s *CertifiedHandlerSuite) TestCommit() {
	s.Run("created", func() {
		s.service.EXPECT().CommitRange(gomock.Any(), models.CommitRequest{
			BranchID:      "b1",
			FirstSerial:   1051,
			NumberOfBooks: 1,
			OperationType: cbmodels.OperationPrint,
		}).Return(&models.CheckLog{
			ID:            uuid.New(),
			BranchID:      "b1",
			FirstSerial:   1051,
			LastSerial:    1100,
			TotalChecks:   50,
			NumberOfBooks: 1,
			OperationType: cbmodels.OperationPrint,
			PrintedBy:     "teller-7",
			PrintDate:     time.Now(),
		}, nil)

		w := s.do(operator(), http.MethodPost, "/certified/branches/b1/commit", map[string]any{
			"first_serial":    1051,
			"number_of_books": 1,
		})
		s.Equal(http.StatusCreated, w.Code)
		var log models.CheckLog
		s.Require().NoError(json.NewDecoder(w.Body).Decode(&log))
		s.Equal(int64(1100), log.LastSerial)
	})

	s.Run("lost race is a 409 asking to refresh", func() {
		s.service.EXPECT().CommitRange(gomock.Any(), gomock.Any()).Return(nil,
			dErrors.New(dErrors.CodeSerialConflict, "range already allocated, refresh the preview and retry"))

		w := s.do(operator(), http.MethodPost, "/certified/branches/b1/commit", map[string]any{
			"first_serial":    1051,
			"number_of_books": 1,
		})
		s.Equal(http.StatusConflict, w.Code)
		body := s.errorBody(w)
		s.Equal("serial_conflict", body["error"])
		s.Contains(body["error_description"], "refresh")
	})

	s.Run("insufficient stock is a 422", func() {
		s.service.EXPECT().CommitRange(gomock.Any(), gomock.Any()).Return(nil,
			dErrors.New(dErrors.CodeInsufficientStock, "insufficient certified cheque stock for 50 leaves, add inventory first"))

		w := s.do(operator(), http.MethodPost, "/certified/branches/b1/commit", map[string]any{
			"first_serial":    1051,
			"number_of_books": 1,
		})
		s.Equal(http.StatusUnprocessableEntity, w.Code)
	})

	s.Run("reprint passes override and notes", func() {
		s.service.EXPECT().CommitRange(gomock.Any(), models.CommitRequest{
			BranchID:      "b1",
			FirstSerial:   1001,
			NumberOfBooks: 1,
			Override:      true,
			OperationType: cbmodels.OperationReprint,
			Notes:         "damaged in printer",
		}).Return(&models.CheckLog{ID: uuid.New()}, nil)

		w := s.do(operator(), http.MethodPost, "/certified/branches/b1/commit", map[string]any{
			"first_serial":    1001,
			"number_of_books": 1,
			"override":        true,
			"operation_type":  "reprint",
			"notes":           " damaged in printer ",
		})
		s.Equal(http.StatusCreated, w.Code)
	})

	s.Run("missing first serial", func() {
		w := s.do(operator(), http.MethodPost, "/certified/branches/b1/commit", map[string]any{"number_of_books": 1})
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

// =============================================================================
// History, print, stock
// =============================================================================

func (s *CertifiedHandlerSuite) TestHistory() {
	s.Run("passes limit", func() {
		s.service.EXPECT().History(gomock.Any(), "b1", 5).Return([]*models.CheckLog{{ID: uuid.New()}}, nil)
		w := s.do(operator(), http.MethodGet, "/certified/branches/b1/history?limit=5", nil)
		s.Equal(http.StatusOK, w.Code)
		var resp HistoryResponse
		s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
		s.Len(resp.Logs, 1)
	})

	s.Run("bad limit", func() {
		w := s.do(operator(), http.MethodGet, "/certified/branches/b1/history?limit=abc", nil)
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *CertifiedHandlerSuite) TestPrint() {
	s.Run("writes the document", func() {
		id := uuid.New()
		s.service.EXPECT().PrintBatch(gomock.Any(), id).Return(
			&models.CheckLog{ID: id},
			&cbmodels.RenderableDocument{ContentType: "text/html; charset=utf-8", Pages: 150, Body: []byte("<html/>")},
			nil,
		)
		w := s.do(operator(), http.MethodGet, "/certified/logs/"+id.String()+"/print", nil)
		s.Equal(http.StatusOK, w.Code)
		s.Equal("150", w.Header().Get(HeaderPageCount))
		s.Equal(id.String(), w.Header().Get(HeaderCertifiedLogID))
		s.Equal("<html/>", w.Body.String())
	})

	s.Run("an already served batch is a conflict", func() {
		id := uuid.New()
		s.service.EXPECT().PrintBatch(gomock.Any(), id).Return(nil, nil,
			dErrors.New(dErrors.CodePrintBlocked, "certified serials 1-50 were already printed"))
		w := s.do(operator(), http.MethodGet, "/certified/logs/"+id.String()+"/print", nil)
		s.Equal(http.StatusConflict, w.Code)
		s.Empty(w.Header().Get(HeaderCertifiedLogID))
	})

	s.Run("id must be a uuid", func() {
		w := s.do(operator(), http.MethodGet, "/certified/logs/42/print", nil)
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *CertifiedHandlerSuite) TestStock() {
	s.Run("read", func() {
		s.service.EXPECT().StockLevel(gomock.Any()).Return(int64(850), nil)
		w := s.do(operator(), http.MethodGet, "/certified/stock", nil)
		s.Equal(http.StatusOK, w.Code)
		s.Equal(int64(850), testutil.UnmarshalResponse[StockResponse](s.T(), w).Available)
	})

	s.Run("add requires the certified permission", func() {
		w := s.do(operator(), http.MethodPost, "/certified/stock", map[string]any{"quantity": 500})
		s.Equal(http.StatusForbidden, w.Code)
	})

	s.Run("add", func() {
		s.service.EXPECT().AddStock(gomock.Any(), int64(500)).Return(int64(1350), nil)
		w := s.do(operator(requestcontext.PermissionCertified), http.MethodPost, "/certified/stock", map[string]any{"quantity": 500})
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("add rejects non-positive quantity", func() {
		w := s.do(operator(requestcontext.PermissionCertified), http.MethodPost, "/certified/stock", map[string]any{"quantity": 0})
		s.Equal(http.StatusBadRequest, w.Code)
	})
}
