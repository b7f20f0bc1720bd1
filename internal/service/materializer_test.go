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

var _ = Describe("Materializer", func() {
	wib := time.FixedZone("WIB", 7*3600)
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, wib)

	var stores *store.Stores
	var mat *service.Materializer

	ch := &model.Channel{ID: 2, ExternalID: "ops@g.us", Name: "Ops Toko", Kind: model.ChannelKindGroup}
	messages := []*model.Message{
		{ID: 11, ChannelID: 2, ExternalID: "m1", SenderName: "Pak Andi", Timestamp: date.Add(9 * time.Hour)},
		{ID: 12, ChannelID: 2, ExternalID: "m2", SenderName: "Budi", Timestamp: date.Add(9*time.Hour + time.Minute)},
	}

	BeforeEach(func() {
		stores = newTestStores()
		mat = newTestMaterializer(stores, wib)
	})

	It("refuses a second record for the same identity", func() {
		result := &model.ClassificationResult{Category: model.CategoryReport, Summary: "omzet"}

		_, err := mat.Materialize(context.Background(), ch, date, "thread:m1", messages, result)
		Expect(err).NotTo(HaveOccurred())

		_, err = mat.Materialize(context.Background(), ch, date, "thread:m1", messages, result)
		Expect(err).To(MatchError(store.ErrAlreadyExists))
		Expect(stores.Topics.(*fakeTopicStore).all()).To(HaveLen(1))
	})

	It("resolves the deadline while keeping the raw text", func() {
		deadline := "besok"
		result := &model.ClassificationResult{
			Category: model.CategoryTask, Summary: "kirim laporan",
			Outcome: model.OutcomePending, DeadlineText: &deadline,
		}

		record, err := mat.Materialize(context.Background(), ch, date, "thread:m1", messages, result)

		Expect(err).NotTo(HaveOccurred())
		Expect(*record.DeadlineText).To(Equal("besok"))
		Expect(record.Deadline).NotTo(BeNil())
		Expect(record.Deadline.Hour()).To(Equal(17))
	})

	It("keeps unparseable deadline text visible with no resolved timestamp", func() {
		deadline := "kalau sempat minggu depan"
		result := &model.ClassificationResult{
			Category: model.CategoryTask, Summary: "kirim laporan",
			Outcome: model.OutcomePending, DeadlineText: &deadline,
		}

		record, err := mat.Materialize(context.Background(), ch, date, "thread:m1", messages, result)

		Expect(err).NotTo(HaveOccurred())
		Expect(*record.DeadlineText).To(Equal(deadline))
		Expect(record.Deadline).To(BeNil())
	})

	It("uses the unit's first message as the source reference", func() {
		result := &model.ClassificationResult{
			Category: model.CategoryTask, Summary: "kirim laporan", Outcome: model.OutcomePending,
		}

		_, err := mat.Materialize(context.Background(), ch, date, "thread:m1", messages, result)

		Expect(err).NotTo(HaveOccurred())
		tasks := stores.Tasks.(*fakeTaskStore).all()
		Expect(tasks).To(HaveLen(1))
		Expect(*tasks[0].SourceMessageID).To(Equal(int64(11)))
	})

	It("supersedes an older direction from the same issuer", func() {
		issuer := "Pak Andi"
		result := &model.ClassificationResult{
			Category: model.CategoryDirection, Summary: "retur lewat gudang",
			AssignedBy: &issuer,
		}

		_, err := mat.Materialize(context.Background(), ch, date, "thread:m1", messages, result)
		Expect(err).NotTo(HaveOccurred())

		result2 := &model.ClassificationResult{
			Category: model.CategoryDirection, Summary: "retur lewat gudang pusat",
			AssignedBy: &issuer,
		}
		_, err = mat.Materialize(context.Background(), ch, date, "thread:m2", messages, result2)
		Expect(err).NotTo(HaveOccurred())

		directions := stores.Directions.(*fakeDirectionStore).all()
		Expect(directions).To(HaveLen(2))
		Expect(directions[0].IsStillValid).To(BeFalse())
		Expect(directions[0].SupersededByID).NotTo(BeNil())
		Expect(directions[1].IsStillValid).To(BeTrue())
	})

	It("leaves directions from other issuers standing", func() {
		andi, sari := "Pak Andi", "Bu Sari"
		first := &model.ClassificationResult{
			Category: model.CategoryDirection, Summary: "retur lewat gudang", AssignedBy: &andi,
		}
		second := &model.ClassificationResult{
			Category: model.CategoryDirection, Summary: "diskon maksimal 10%", AssignedBy: &sari,
		}

		_, err := mat.Materialize(context.Background(), ch, date, "thread:m1", messages, first)
		Expect(err).NotTo(HaveOccurred())
		_, err = mat.Materialize(context.Background(), ch, date, "thread:m2", messages, second)
		Expect(err).NotTo(HaveOccurred())

		for _, d := range stores.Directions.(*fakeDirectionStore).all() {
			Expect(d.IsStillValid).To(BeTrue())
		}
	})
})
