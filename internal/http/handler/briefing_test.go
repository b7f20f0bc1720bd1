package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"hollymart.app/intel/internal/http/handler"
	"hollymart.app/intel/internal/model"
	"hollymart.app/intel/internal/store"
)

var _ = Describe("BriefingHandler", func() {
	var (
		router    *gin.Engine
		briefings *mockBriefingStore
		loc       *time.Location
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		briefings = &mockBriefingStore{}
		loc = time.FixedZone("business", 7*3600)
		h := handler.NewBriefingHandler(briefings, loc)
		router.GET("/briefings/:date", h.GetByDate)
	})

	It("returns the briefing for a date", func() {
		briefings.getByDateFn = func(_ context.Context, date time.Time) (*model.Briefing, error) {
			Expect(date.Format("2006-01-02")).To(Equal("2026-03-09"))
			return &model.Briefing{
				ID:           7,
				BriefingDate: date,
				Content:      "📋 Briefing Harian",
				TopicCount:   4,
				TaskCount:    2,
			}, nil
		}

		req := httptest.NewRequest(http.MethodGet, "/briefings/2026-03-09", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp["briefing_date"]).To(Equal("2026-03-09"))
		Expect(resp["topic_count"]).To(BeEquivalentTo(4))
	})

	It("returns 404 when no briefing exists", func() {
		briefings.getByDateFn = func(_ context.Context, _ time.Time) (*model.Briefing, error) {
			return nil, store.ErrNotFound
		}

		req := httptest.NewRequest(http.MethodGet, "/briefings/2026-03-09", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("rejects a malformed date", func() {
		req := httptest.NewRequest(http.MethodGet, "/briefings/yesterday", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})
})
