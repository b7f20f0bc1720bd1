package analysis_test

import (
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"hollymart.app/intel/internal/analysis"
	"hollymart.app/intel/internal/model"
)

func makeMessages(n int) []model.Message {
	base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	messages := make([]model.Message, n)
	for i := range messages {
		messages[i] = model.Message{
			ID:         int64(i + 1),
			ExternalID: fmt.Sprintf("m%d", i+1),
			Timestamp:  base.Add(time.Duration(i) * time.Minute),
		}
	}
	return messages
}

var _ = Describe("SplitWindows", func() {
	It("returns one window when the input fits", func() {
		windows := analysis.SplitWindows(makeMessages(10), 150)
		Expect(windows).To(HaveLen(1))
		Expect(windows[0]).To(HaveLen(10))
	})

	It("splits 200 messages at max 150 into two windows of 100", func() {
		windows := analysis.SplitWindows(makeMessages(200), 150)
		Expect(windows).To(HaveLen(2))
		Expect(windows[0]).To(HaveLen(100))
		Expect(windows[1]).To(HaveLen(100))
	})

	It("preserves chronological order with no overlap or gaps", func() {
		messages := makeMessages(137)
		windows := analysis.SplitWindows(messages, 50)

		var flattened []model.Message
		for _, w := range windows {
			flattened = append(flattened, w...)
		}
		Expect(flattened).To(HaveLen(len(messages)))
		for i := range flattened {
			Expect(flattened[i].ExternalID).To(Equal(messages[i].ExternalID))
		}
	})

	DescribeTable("window sizes never exceed max and differ by at most one",
		func(n, max int) {
			windows := analysis.SplitWindows(makeMessages(n), max)

			smallest, largest := n, 0
			total := 0
			for _, w := range windows {
				Expect(len(w)).To(BeNumerically("<=", max))
				if len(w) < smallest {
					smallest = len(w)
				}
				if len(w) > largest {
					largest = len(w)
				}
				total += len(w)
			}
			Expect(total).To(Equal(n))
			Expect(largest - smallest).To(BeNumerically("<=", 1))
		},
		Entry("151 at 150", 151, 150),
		Entry("300 at 150", 300, 150),
		Entry("301 at 150", 301, 150),
		Entry("7 at 3", 7, 3),
		Entry("10 at 4", 10, 4),
		Entry("1 at 1", 1, 1),
	)

	It("returns nil for no messages", func() {
		Expect(analysis.SplitWindows(nil, 150)).To(BeNil())
	})
})
