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

var _ = Describe("Ingestor", func() {
	var (
		ctx      context.Context
		stores   *store.Stores
		ingestor *service.Ingestor
		loc      *time.Location
	)

	BeforeEach(func() {
		ctx = context.Background()
		loc = time.FixedZone("business", 7*3600)
		stores = newTestStores()
		ingestor = service.NewIngestor(stores, newIDGen(), loc)
	})

	Describe("IngestMessage", func() {
		It("registers an unseen channel and stores the message", func() {
			msg, duplicated, err := ingestor.IngestMessage(ctx, service.IngestParams{
				ChannelExternalID: "ops@g.us",
				ChannelName:       "Tim Operasional",
				ChannelKind:       model.ChannelKindGroup,
				ExternalID:        "wa-1",
				SenderJID:         "628111@s.whatsapp.net",
				SenderName:        "Budi",
				Text:              "stok beras menipis",
				Timestamp:         time.Date(2026, 3, 10, 9, 0, 0, 0, loc),
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(duplicated).To(BeFalse())
			Expect(msg.ChannelID).NotTo(BeZero())

			ch, err := stores.Channels.GetByExternalID(ctx, "ops@g.us")
			Expect(err).NotTo(HaveOccurred())
			Expect(ch.Name).To(Equal("Tim Operasional"))
			Expect(ch.IsActive).To(BeTrue())
		})

		It("defaults the channel kind to group", func() {
			_, _, err := ingestor.IngestMessage(ctx, service.IngestParams{
				ChannelExternalID: "ops@g.us",
				ExternalID:        "wa-1",
				Text:              "halo",
				Timestamp:         time.Now(),
			})
			Expect(err).NotTo(HaveOccurred())

			ch, err := stores.Channels.GetByExternalID(ctx, "ops@g.us")
			Expect(err).NotTo(HaveOccurred())
			Expect(ch.Kind).To(Equal(model.ChannelKindGroup))
		})

		It("rejects an invalid channel kind", func() {
			_, _, err := ingestor.IngestMessage(ctx, service.IngestParams{
				ChannelExternalID: "ops@g.us",
				ChannelKind:       model.ChannelKind("broadcast"),
				ExternalID:        "wa-1",
				Text:              "halo",
				Timestamp:         time.Now(),
			})
			Expect(err).To(MatchError(ContainSubstring("invalid channel kind")))
		})

		It("reports a redelivered external ID as duplicated", func() {
			params := service.IngestParams{
				ChannelExternalID: "ops@g.us",
				ExternalID:        "wa-1",
				Text:              "halo",
				Timestamp:         time.Now(),
			}

			_, duplicated, err := ingestor.IngestMessage(ctx, params)
			Expect(err).NotTo(HaveOccurred())
			Expect(duplicated).To(BeFalse())

			_, duplicated, err = ingestor.IngestMessage(ctx, params)
			Expect(err).NotTo(HaveOccurred())
			Expect(duplicated).To(BeTrue())

			messages := stores.Messages.(*fakeMessageStore).all()
			Expect(messages).To(HaveLen(1))
		})

		It("enriches the sender from a known contact", func() {
			Expect(stores.Contacts.Upsert(ctx, &model.Contact{
				ID:           1,
				JID:          "628222@s.whatsapp.net",
				DisplayName:  "Ibu Sari",
				ShortName:    "Sari",
				IsLeadership: true,
			})).To(Succeed())

			msg, _, err := ingestor.IngestMessage(ctx, service.IngestParams{
				ChannelExternalID: "ops@g.us",
				ExternalID:        "wa-2",
				SenderJID:         "628222@s.whatsapp.net",
				Text:              "tolong dicek semua",
				Timestamp:         time.Now(),
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(msg.SenderIsLeadership).To(BeTrue())
			Expect(msg.SenderName).To(Equal("Ibu Sari"))
		})
	})

	Describe("ImportChat", func() {
		const export = "1/2/26, 14:30 - Budi Santoso: Tolong cek stok gudang\n" +
			"1/2/26, 14:31 - Siti: <Media omitted>\n" +
			"1/2/26, 14:32 - Siti: Sudah dikirim laporannya"

		It("parses the export and stores its messages", func() {
			result, err := ingestor.ImportChat(ctx, service.ImportParams{
				ChannelExternalID: "import-ops@g.us",
				ChannelName:       "Arsip Operasional",
				Content:           export,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Parsed).To(Equal(3))
			Expect(result.Created).To(Equal(2))
			Expect(result.Skipped).To(Equal(1))

			messages := stores.Messages.(*fakeMessageStore).all()
			Expect(messages).To(HaveLen(2))
			Expect(messages[0].ExternalID).To(HavePrefix("import_"))
		})

		It("is a no-op when the same export is imported twice", func() {
			_, err := ingestor.ImportChat(ctx, service.ImportParams{
				ChannelExternalID: "import-ops@g.us",
				Content:           export,
			})
			Expect(err).NotTo(HaveOccurred())

			result, err := ingestor.ImportChat(ctx, service.ImportParams{
				ChannelExternalID: "import-ops@g.us",
				Content:           export,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Created).To(BeZero())
			Expect(result.Skipped).To(Equal(3))
		})

		It("matches senders against known contacts by name", func() {
			Expect(stores.Contacts.Upsert(ctx, &model.Contact{
				ID:           1,
				JID:          "628111@s.whatsapp.net",
				DisplayName:  "Budi Santoso",
				ShortName:    "Budi",
				IsLeadership: false,
			})).To(Succeed())

			_, err := ingestor.ImportChat(ctx, service.ImportParams{
				ChannelExternalID: "import-ops@g.us",
				Content:           export,
			})
			Expect(err).NotTo(HaveOccurred())

			messages := stores.Messages.(*fakeMessageStore).all()
			Expect(messages[0].SenderJID).To(Equal("628111@s.whatsapp.net"))
			Expect(messages[1].SenderJID).To(BeEmpty())
		})
	})
})
