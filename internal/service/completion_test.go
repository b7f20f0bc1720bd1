package service_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"hollymart.app/intel/internal/model"
	"hollymart.app/intel/internal/service"
	"hollymart.app/intel/internal/store"
)

var _ = Describe("CompletionDetector", func() {
	wib := time.FixedZone("WIB", 7*3600)
	now := time.Date(2026, 3, 20, 10, 0, 0, 0, wib)

	var stores *store.Stores
	var detector *service.CompletionDetector

	BeforeEach(func() {
		stores = newTestStores()
		detector = service.NewCompletionDetector(testAnalysisConfig(), stores).
			WithClock(func() time.Time { return now })
	})

	channelID := int64(2)
	assignee := "Budi"

	openTask := func(id int64, createdAt time.Time) model.Task {
		return model.Task{
			ID: id, ChannelID: &channelID, Summary: "kirim laporan stok",
			AssignedTo: &assignee, Status: model.TaskStatusNew, CreatedAt: createdAt,
		}
	}

	seedTask := func(t model.Task) {
		tasks := stores.Tasks.(*fakeTaskStore)
		tasks.tasks = append(tasks.tasks, t)
	}

	seedMessage := func(id int64, sender, text string, at time.Time) {
		msgs := stores.Messages.(*fakeMessageStore)
		msgs.messages = append(msgs.messages, model.Message{
			ID: id, ChannelID: channelID, ExternalID: "m", SenderName: sender,
			Text: text, Timestamp: at,
		})
	}

	It("closes a task when the assignee later reports completion", func() {
		seedTask(openTask(1, now.AddDate(0, 0, -10)))
		seedMessage(7, "Budi Santoso", "laporan stok sudah selesai pak", now.Add(-time.Hour))

		summary, err := detector.Run(context.Background())

		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Processed).To(Equal(1))
		Expect(summary.Created).To(Equal(1))

		tasks := stores.Tasks.(*fakeTaskStore).all()
		Expect(tasks[0].Status).To(Equal(model.TaskStatusDone))
		Expect(*tasks[0].CompletionMessageID).To(Equal(int64(7)))
		Expect(tasks[0].CompletedAt).NotTo(BeNil())
	})

	It("closes a stuck task once the assignee reports it done", func() {
		stuck := openTask(1, now.AddDate(0, 0, -3))
		stuck.Status = model.TaskStatusStuck
		seedTask(stuck)
		seedMessage(7, "Budi Santoso", "laporan stok sudah selesai pak", now.Add(-time.Hour))

		summary, err := detector.Run(context.Background())

		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Processed).To(Equal(1))
		Expect(summary.Created).To(Equal(1))

		tasks := stores.Tasks.(*fakeTaskStore).all()
		Expect(tasks[0].Status).To(Equal(model.TaskStatusDone))
		Expect(*tasks[0].CompletionMessageID).To(Equal(int64(7)))
	})

	It("ignores completion talk from other people", func() {
		seedTask(openTask(1, now.AddDate(0, 0, -2)))
		seedMessage(7, "Sari", "punya saya sudah selesai", now.Add(-time.Hour))

		summary, err := detector.Run(context.Background())

		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Created).To(Equal(0))
		Expect(stores.Tasks.(*fakeTaskStore).all()[0].Status).To(Equal(model.TaskStatusNew))
	})

	It("ignores assignee messages without a completion keyword", func() {
		seedTask(openTask(1, now.AddDate(0, 0, -2)))
		seedMessage(7, "Budi", "masih dikerjakan pak", now.Add(-time.Hour))

		summary, err := detector.Run(context.Background())

		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Created).To(Equal(0))
	})

	It("does not look at messages older than the trailing window", func() {
		seedTask(openTask(1, now.AddDate(0, 0, -30)))
		seedMessage(7, "Budi", "sudah selesai", now.AddDate(0, 0, -20))

		summary, err := detector.Run(context.Background())

		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Created).To(Equal(0))
	})

	It("does not look at messages sent before the task existed", func() {
		seedTask(openTask(1, now.Add(-time.Hour)))
		seedMessage(7, "Budi", "sudah selesai", now.Add(-2*time.Hour))

		summary, err := detector.Run(context.Background())

		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Created).To(Equal(0))
	})

	It("skips tasks without an assignee or channel, as skipped not errors", func() {
		noAssignee := openTask(1, now.AddDate(0, 0, -1))
		noAssignee.AssignedTo = nil
		seedTask(noAssignee)

		noChannel := openTask(2, now.AddDate(0, 0, -1))
		noChannel.ChannelID = nil
		seedTask(noChannel)

		summary, err := detector.Run(context.Background())

		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Processed).To(Equal(2))
		Expect(summary.Skipped).To(Equal(2))
		Expect(summary.Errors).To(BeEmpty())
	})
})
