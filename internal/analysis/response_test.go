package analysis_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"hollymart.app/intel/internal/analysis"
	"hollymart.app/intel/internal/model"
)

var _ = Describe("ParseClassification", func() {
	It("decodes a well-formed object", func() {
		raw := `{
			"category": "task",
			"confidence": 0.92,
			"summary": "Budi diminta kirim laporan stok",
			"priority": "high",
			"outcome": "pending",
			"assigned_to": "Budi",
			"deadline_text": "besok"
		}`

		result, err := analysis.ParseClassification(raw)

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Category).To(Equal(model.CategoryTask))
		Expect(result.Confidence).To(Equal(0.92))
		Expect(result.Priority).To(Equal(model.PriorityHigh))
		Expect(result.Outcome).To(Equal(model.OutcomePending))
		Expect(*result.AssignedTo).To(Equal("Budi"))
		Expect(*result.DeadlineText).To(Equal("besok"))
	})

	It("tolerates a markdown code fence", func() {
		raw := "```json\n{\"category\": \"report\", \"summary\": \"laporan harian\"}\n```"

		result, err := analysis.ParseClassification(raw)

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Category).To(Equal(model.CategoryReport))
	})

	It("unwraps a result hidden under a conventional array key", func() {
		raw := `{"results": [{"category": "question", "summary": "stok berapa?"}]}`

		result, err := analysis.ParseClassification(raw)

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Category).To(Equal(model.CategoryQuestion))
	})

	It("unwraps a bare array", func() {
		raw := `[{"category": "coordination", "summary": "jadwal shift"}]`

		result, err := analysis.ParseClassification(raw)

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Category).To(Equal(model.CategoryCoordination))
	})

	It("unwraps the first array-valued field when no conventional key matches", func() {
		raw := `{"data": [{"category": "report", "summary": "omzet"}]}`

		result, err := analysis.ParseClassification(raw)

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Category).To(Equal(model.CategoryReport))
	})

	It("defaults priority and outcome when omitted", func() {
		result, err := analysis.ParseClassification(`{"category": "noise"}`)

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Priority).To(Equal(model.PriorityNormal))
		Expect(result.Outcome).To(Equal(model.OutcomeNoActionNeeded))
	})

	It("clamps confidence into [0,1]", func() {
		result, err := analysis.ParseClassification(`{"category": "task", "confidence": 1.7}`)

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Confidence).To(Equal(1.0))
	})

	It("rejects malformed JSON with a MalformedError", func() {
		_, err := analysis.ParseClassification(`{"category": "task"`)

		var malformed *analysis.MalformedError
		Expect(errors.As(err, &malformed)).To(BeTrue())
	})

	It("rejects a missing category", func() {
		_, err := analysis.ParseClassification(`{"summary": "no category here"}`)

		var malformed *analysis.MalformedError
		Expect(errors.As(err, &malformed)).To(BeTrue())
		Expect(malformed.Reason).To(ContainSubstring("category"))
	})

	It("rejects an unknown category", func() {
		_, err := analysis.ParseClassification(`{"category": "gossip"}`)

		var malformed *analysis.MalformedError
		Expect(errors.As(err, &malformed)).To(BeTrue())
	})
})

var _ = Describe("ParseSegmentation", func() {
	It("decodes topics and noise", func() {
		raw := `{
			"topics": [
				{"label": "stok gudang", "message_indices": [1, 2, 5], "key_participants": ["Budi"], "time_span": "09:00-09:30"},
				{"label": "jadwal shift", "message_indices": [3]}
			],
			"noise": [4]
		}`

		topics, noise, err := analysis.ParseSegmentation(raw, 5)

		Expect(err).NotTo(HaveOccurred())
		Expect(topics).To(HaveLen(2))
		Expect(topics[0].MemberIndices).To(Equal([]int{1, 2, 5}))
		Expect(noise).To(Equal([]int{4}))
	})

	It("drops out-of-range and duplicate indices", func() {
		raw := `{"topics": [{"label": "a", "message_indices": [0, 1, 2, 2, 9]}], "noise": [1]}`

		topics, noise, err := analysis.ParseSegmentation(raw, 3)

		Expect(err).NotTo(HaveOccurred())
		Expect(topics).To(HaveLen(1))
		Expect(topics[0].MemberIndices).To(Equal([]int{1, 2}))
		Expect(noise).To(Equal([]int{3}))
	})

	It("routes unclaimed indices into noise", func() {
		raw := `{"topics": [{"label": "a", "message_indices": [2]}], "noise": []}`

		_, noise, err := analysis.ParseSegmentation(raw, 4)

		Expect(err).NotTo(HaveOccurred())
		Expect(noise).To(Equal([]int{1, 3, 4}))
	})

	It("treats missing fields as empty collections", func() {
		topics, noise, err := analysis.ParseSegmentation(`{}`, 2)

		Expect(err).NotTo(HaveOccurred())
		Expect(topics).To(BeEmpty())
		Expect(noise).To(Equal([]int{1, 2}))
	})

	It("drops topics whose indices all fail to resolve", func() {
		raw := `{"topics": [{"label": "ghost", "message_indices": [7, 8]}]}`

		topics, _, err := analysis.ParseSegmentation(raw, 2)

		Expect(err).NotTo(HaveOccurred())
		Expect(topics).To(BeEmpty())
	})

	It("rejects malformed JSON with a MalformedError", func() {
		_, _, err := analysis.ParseSegmentation(`not json`, 2)

		var malformed *analysis.MalformedError
		Expect(errors.As(err, &malformed)).To(BeTrue())
	})
})
