package service_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"hollymart.app/intel/internal/model"
)

var _ = Describe("Analyzer", func() {
	wib := time.FixedZone("WIB", 7*3600)
	date := time.Date(2026, 3, 9, 0, 0, 0, 0, wib)

	var stores = newTestStores()

	BeforeEach(func() {
		stores = newTestStores()
	})

	seed := func(ch model.Channel, messages ...model.Message) {
		channels := stores.Channels.(*fakeChannelStore)
		channels.channels = append(channels.channels, ch)
		msgStore := stores.Messages.(*fakeMessageStore)
		msgStore.messages = append(msgStore.messages, messages...)
	}

	directChannel := model.Channel{
		ID: 1, ExternalID: "budi@s.net", Name: "Budi", Kind: model.ChannelKindDirect, IsActive: true,
	}
	groupChannel := model.Channel{
		ID: 2, ExternalID: "ops@g.us", Name: "Ops Toko", Kind: model.ChannelKindGroup, IsActive: true,
	}

	dm := func(id int64, externalID, sender, text string, at time.Time) model.Message {
		return model.Message{
			ID: id, ChannelID: 1, ExternalID: externalID, SenderJID: "budi@s.net",
			SenderName: sender, Text: text, Timestamp: at,
		}
	}
	groupMsg := func(id int64, externalID, sender, text string, at time.Time) model.Message {
		return model.Message{
			ID: id, ChannelID: 2, ExternalID: externalID, SenderJID: sender + "@s.net",
			SenderName: sender, Text: text, Timestamp: at,
		}
	}

	It("classifies a direct conversation into one materialized topic", func() {
		seed(directChannel,
			dm(1, "m1", "Budi", "pak, stok aqua menipis", date.Add(9*time.Hour)),
			dm(2, "m2", "Budi", "perlu order lagi?", date.Add(9*time.Hour+time.Minute)),
		)
		client := &scriptedLLM{script: []scriptedResponse{
			{text: `{"category": "task", "summary": "order stok aqua", "outcome": "pending", "priority": "high", "assigned_to": "Budi", "deadline_text": "besok"}`},
		}}

		summary, err := newTestAnalyzer(stores, client, wib).Run(context.Background(), date)

		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Processed).To(Equal(1))
		Expect(summary.Created).To(Equal(1))
		Expect(summary.Errors).To(BeEmpty())
		Expect(client.callCount()).To(Equal(1))

		records := stores.Topics.(*fakeTopicStore).all()
		Expect(records).To(HaveLen(1))
		Expect(records[0].Category).To(Equal(model.CategoryTask))
		Expect(records[0].IsOngoing).To(BeTrue())
		Expect(records[0].MessageIDs).To(Equal([]int64{1, 2}))
		Expect(records[0].Deadline).NotTo(BeNil())

		tasks := stores.Tasks.(*fakeTaskStore).all()
		Expect(tasks).To(HaveLen(1))
		Expect(tasks[0].Status).To(Equal(model.TaskStatusNew))
		Expect(*tasks[0].AssignedTo).To(Equal("Budi"))
	})

	It("is a no-op on a second run for the same date", func() {
		seed(directChannel, dm(1, "m1", "Budi", "laporan terlampir", date.Add(10*time.Hour)))
		client := &scriptedLLM{script: []scriptedResponse{
			{text: `{"category": "report", "summary": "laporan harian"}`},
		}}
		analyzer := newTestAnalyzer(stores, client, wib)

		first, err := analyzer.Run(context.Background(), date)
		Expect(err).NotTo(HaveOccurred())
		Expect(first.Created).To(Equal(1))
		callsAfterFirst := client.callCount()

		second, err := analyzer.Run(context.Background(), date)
		Expect(err).NotTo(HaveOccurred())
		Expect(second.Created).To(Equal(0))
		Expect(second.Skipped).To(Equal(1))
		Expect(client.callCount()).To(Equal(callsAfterFirst), "no inference on an already-analyzed date")
		Expect(stores.Topics.(*fakeTopicStore).all()).To(HaveLen(1))
	})

	It("segments a busy group channel and records noise without inference", func() {
		seed(groupChannel,
			groupMsg(1, "m1", "Budi", "stok aqua habis", date.Add(9*time.Hour)),
			groupMsg(2, "m2", "Sari", "saya order siang ini", date.Add(9*time.Hour+5*time.Minute)),
			groupMsg(3, "m3", "Dewi", "pagi semua", date.Add(9*time.Hour+10*time.Minute)),
		)
		client := &scriptedLLM{script: []scriptedResponse{
			{text: `{"topics": [{"label": "stok aqua", "message_indices": [1, 2]}], "noise": [3]}`},
			{text: `{"category": "coordination", "summary": "order stok aqua", "outcome": "completed"}`},
		}}

		summary, err := newTestAnalyzer(stores, client, wib).Run(context.Background(), date)

		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Processed).To(Equal(1))
		Expect(summary.Created).To(Equal(2), "one topic plus one noise record")
		Expect(client.callCount()).To(Equal(2), "segmentation and one classification")

		var categories []model.Category
		for _, r := range stores.Topics.(*fakeTopicStore).all() {
			categories = append(categories, r.Category)
		}
		Expect(categories).To(ConsistOf(model.CategoryCoordination, model.CategoryNoise))
	})

	It("bypasses segmentation below the minimum message count", func() {
		seed(groupChannel,
			groupMsg(1, "m1", "Budi", "listrik gudang mati", date.Add(8*time.Hour)),
			groupMsg(2, "m2", "Sari", "omzet kemarin 12jt", date.Add(9*time.Hour)),
		)
		client := &scriptedLLM{script: []scriptedResponse{
			{text: `{"category": "question", "summary": "listrik gudang", "outcome": "ongoing"}`},
			{text: `{"category": "report", "summary": "omzet kemarin"}`},
		}}

		summary, err := newTestAnalyzer(stores, client, wib).Run(context.Background(), date)

		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Processed).To(Equal(2))
		Expect(summary.Created).To(Equal(2))
		Expect(client.callCount()).To(Equal(2))
	})

	It("isolates a malformed response to its unit", func() {
		seed(groupChannel,
			groupMsg(1, "m1", "Budi", "listrik gudang mati", date.Add(8*time.Hour)),
			groupMsg(2, "m2", "Sari", "omzet kemarin 12jt", date.Add(9*time.Hour)),
		)
		client := &scriptedLLM{script: []scriptedResponse{
			{text: `this is not json at all`},
			{text: `{"category": "report", "summary": "omzet kemarin"}`},
		}}

		summary, err := newTestAnalyzer(stores, client, wib).Run(context.Background(), date)

		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Processed).To(Equal(2))
		Expect(summary.Created).To(Equal(1))
		Expect(summary.Errors).To(HaveLen(1))
		Expect(summary.Errors[0]).To(ContainSubstring("malformed"))

		records := stores.Topics.(*fakeTopicStore).all()
		Expect(records).To(HaveLen(1))
		Expect(records[0].Category).To(Equal(model.CategoryReport))
	})

	It("links a resolving topic to a prior open one", func() {
		topics := stores.Topics.(*fakeTopicStore)
		topics.records = append(topics.records, model.TopicRecord{
			ID: 100, ChannelID: 1, AnalysisDate: date.AddDate(0, 0, -1),
			UnitKey: "dm:old", Category: model.CategoryQuestion,
			Outcome: model.OutcomeOngoing, IsOngoing: true,
		})
		seed(directChannel, dm(1, "m1", "Budi", "sudah dijawab pak, stoknya 40 dus", date.Add(11*time.Hour)))
		client := &scriptedLLM{script: []scriptedResponse{
			{text: `{"category": "question", "summary": "stok dijawab", "outcome": "answered"}`},
		}}

		summary, err := newTestAnalyzer(stores, client, wib).Run(context.Background(), date)

		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Errors).To(BeEmpty())

		old := topics.byID(100)
		Expect(old.IsOngoing).To(BeFalse())

		var current *model.TopicRecord
		for _, r := range topics.all() {
			if sameDate(r.AnalysisDate, date) {
				r := r
				current = &r
			}
		}
		Expect(current).NotTo(BeNil())
		Expect(current.ContinuedFromID).NotTo(BeNil())
		Expect(*current.ContinuedFromID).To(Equal(int64(100)))
	})

	It("creates a task as done when the outcome already indicates completion", func() {
		seed(directChannel, dm(1, "m1", "Budi", "rak sudah selesai dipasang", date.Add(14*time.Hour)))
		client := &scriptedLLM{script: []scriptedResponse{
			{text: `{"category": "task", "summary": "pasang rak", "outcome": "completed", "assigned_to": "Budi"}`},
		}}

		_, err := newTestAnalyzer(stores, client, wib).Run(context.Background(), date)

		Expect(err).NotTo(HaveOccurred())
		tasks := stores.Tasks.(*fakeTaskStore).all()
		Expect(tasks).To(HaveLen(1))
		Expect(tasks[0].Status).To(Equal(model.TaskStatusDone))
		Expect(tasks[0].CompletedAt).NotTo(BeNil())
	})
})
