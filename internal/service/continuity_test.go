package service_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"hollymart.app/intel/internal/model"
	"hollymart.app/intel/internal/service"
)

var _ = Describe("ContinuityTracker", func() {
	wib := time.FixedZone("WIB", 7*3600)
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, wib)
	yesterday := today.AddDate(0, 0, -1)

	var topics *fakeTopicStore
	var tracker *service.ContinuityTracker

	BeforeEach(func() {
		topics = &fakeTopicStore{}
		tracker = service.NewContinuityTracker(topics)
	})

	record := func(id, channelID int64, date time.Time, category model.Category, outcome model.Outcome, ongoing bool) model.TopicRecord {
		return model.TopicRecord{
			ID: id, ChannelID: channelID, AnalysisDate: date, UnitKey: "u",
			Category: category, Outcome: outcome, IsOngoing: ongoing,
		}
	}

	It("links an open topic to its resolution", func() {
		topics.records = []model.TopicRecord{
			record(1, 10, yesterday, model.CategoryQuestion, model.OutcomeOngoing, true),
			record(2, 10, today, model.CategoryQuestion, model.OutcomeAnswered, false),
		}

		linked, errs := tracker.Reconcile(context.Background(), today)

		Expect(errs).To(BeEmpty())
		Expect(linked).To(Equal(1))
		Expect(topics.byID(1).IsOngoing).To(BeFalse())
		Expect(*topics.byID(2).ContinuedFromID).To(Equal(int64(1)))
	})

	It("requires the same channel and category", func() {
		topics.records = []model.TopicRecord{
			record(1, 10, yesterday, model.CategoryQuestion, model.OutcomeOngoing, true),
			record(2, 11, today, model.CategoryQuestion, model.OutcomeAnswered, false),
			record(3, 10, today, model.CategoryTask, model.OutcomeCompleted, false),
		}

		linked, _ := tracker.Reconcile(context.Background(), today)

		Expect(linked).To(Equal(0))
		Expect(topics.byID(1).IsOngoing).To(BeTrue())
	})

	It("ignores current topics without a resolving outcome", func() {
		topics.records = []model.TopicRecord{
			record(1, 10, yesterday, model.CategoryQuestion, model.OutcomeOngoing, true),
			record(2, 10, today, model.CategoryQuestion, model.OutcomeOngoing, true),
		}

		linked, _ := tracker.Reconcile(context.Background(), today)

		Expect(linked).To(Equal(0))
	})

	It("claims a continuation target at most once", func() {
		topics.records = []model.TopicRecord{
			record(1, 10, yesterday, model.CategoryQuestion, model.OutcomeOngoing, true),
			record(2, 10, yesterday, model.CategoryQuestion, model.OutcomeOngoing, true),
			record(3, 10, today, model.CategoryQuestion, model.OutcomeAnswered, false),
		}

		linked, errs := tracker.Reconcile(context.Background(), today)

		Expect(errs).To(BeEmpty())
		Expect(linked).To(Equal(1))
		Expect(topics.byID(1).IsOngoing).To(BeFalse(), "first open topic wins the target")
		Expect(topics.byID(2).IsOngoing).To(BeTrue(), "second open topic stays open")
		Expect(*topics.byID(3).ContinuedFromID).To(Equal(int64(1)))
	})

	It("keeps the old topic open when resolving it fails after linking", func() {
		topics.records = []model.TopicRecord{
			record(1, 10, yesterday, model.CategoryQuestion, model.OutcomeOngoing, true),
			record(2, 10, today, model.CategoryQuestion, model.OutcomeAnswered, false),
		}
		topics.markResolvedErr = errors.New("connection reset")

		linked, errs := tracker.Reconcile(context.Background(), today)

		Expect(linked).To(Equal(0))
		Expect(errs).To(HaveLen(1))
		Expect(topics.byID(1).IsOngoing).To(BeTrue(), "stays eligible for the next pass")
		Expect(*topics.byID(2).ContinuedFromID).To(Equal(int64(1)))

		topics.markResolvedErr = nil
		linked, errs = tracker.Reconcile(context.Background(), today)

		Expect(errs).To(BeEmpty())
		Expect(linked).To(Equal(1))
		Expect(topics.byID(1).IsOngoing).To(BeFalse())
	})

	It("does nothing when no topics are open", func() {
		topics.records = []model.TopicRecord{
			record(2, 10, today, model.CategoryQuestion, model.OutcomeAnswered, false),
		}

		linked, errs := tracker.Reconcile(context.Background(), today)

		Expect(linked).To(Equal(0))
		Expect(errs).To(BeEmpty())
	})
})
