package ocr

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Normalize", func() {
	var (
		reply  *Reply
		result *Result
	)

	JustBeforeEach(func() {
		result = Normalize(reply)
	})

	When("the text spans two pages", func() {
		BeforeEach(func() {
			reply = &Reply{Text: "A" + PageSeparator + "B"}
		})

		It("splits on the separator", func() {
			Expect(result.Pages).To(Equal([]string{"A", "B"}))
		})

		It("keeps the raw text", func() {
			Expect(result.RawText).To(Equal("A" + PageSeparator + "B"))
		})
	})

	When("there is no separator", func() {
		BeforeEach(func() {
			reply = &Reply{Text: "A"}
		})

		It("returns a single page", func() {
			Expect(result.Pages).To(Equal([]string{"A"}))
		})
	})

	When("the reply is empty", func() {
		BeforeEach(func() {
			reply = &Reply{}
		})

		It("returns one empty page", func() {
			Expect(result.Pages).To(Equal([]string{""}))
		})

		It("has empty meta", func() {
			Expect(result.Meta.DurationMs).To(BeNil())
			Expect(result.Meta.Pages).To(BeNil())
		})
	})

	When("the reply is nil", func() {
		BeforeEach(func() {
			reply = nil
		})

		It("still returns one page", func() {
			Expect(result.Pages).To(HaveLen(1))
		})
	})

	When("the text is whitespace only", func() {
		BeforeEach(func() {
			reply = &Reply{Text: "  \n\t"}
		})

		It("returns it as the only page", func() {
			Expect(result.Pages).To(Equal([]string{"  \n\t"}))
		})
	})

	When("the separator is only approximately present", func() {
		BeforeEach(func() {
			reply = &Reply{Text: "A\n--- page break ---\nB"}
		})

		It("does not split", func() {
			Expect(result.Pages).To(HaveLen(1))
		})
	})

	When("the reply carries meta", func() {
		BeforeEach(func() {
			body := []byte(`{"text":"Hoc est.\n\n--- page break ---\n\nAliud est.","meta":{"duration_ms":812,"pages":2}}`)
			var err error
			reply, err = decodeReply(body)
			Expect(err).NotTo(HaveOccurred())
		})

		It("splits the pages", func() {
			Expect(result.Pages).To(Equal([]string{"Hoc est.", "Aliud est."}))
		})

		It("displays the duration", func() {
			Expect(result.DisplayDuration()).To(Equal("812"))
		})

		It("displays the advisory page count", func() {
			Expect(result.DisplayPageCount()).To(Equal(2))
		})
	})

	When("meta disagrees with the split", func() {
		BeforeEach(func() {
			pages := 5
			reply = &Reply{Text: "only one", Meta: &Meta{Pages: &pages}}
		})

		It("keeps the split as the source of truth for pages", func() {
			Expect(result.Pages).To(HaveLen(1))
			Expect(result.DisplayPageCount()).To(Equal(5))
		})
	})

	It("marks the translation as pending", func() {
		Expect(result.Translation.Available()).To(BeFalse())
		Expect(result.Translation.String()).To(Equal(TranslationPlaceholder))
	})
})

var _ = Describe("Result display", func() {
	It("shows an unknown duration as a question mark", func() {
		Expect(Normalize(&Reply{Text: "x"}).DisplayDuration()).To(Equal("?"))
	})

	It("falls back to the split page count", func() {
		Expect(Normalize(&Reply{Text: "a" + PageSeparator + "b" + PageSeparator + "c"}).DisplayPageCount()).To(Equal(3))
	})
})

var _ = Describe("Translation", func() {
	It("distinguishes an empty translation from a pending one", func() {
		empty := TranslationOf("")
		Expect(empty.Available()).To(BeTrue())
		Expect(empty.String()).To(Equal(""))
		Expect(TranslationPending().String()).To(Equal("(translation pending)"))
	})

	It("encodes its status", func() {
		data, err := json.Marshal(TranslationOf("This is."))
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(MatchJSON(`{"status":"available","text":"This is."}`))

		data, err = json.Marshal(TranslationPending())
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(MatchJSON(`{"status":"pending","text":"(translation pending)"}`))
	})
})

var _ = Describe("decodeReply", func() {
	It("drops a text field of the wrong type", func() {
		reply, err := decodeReply([]byte(`{"text":42,"meta":{"duration_ms":"fast","pages":3}}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.Text).To(Equal(""))
		Expect(reply.Meta.DurationMs).To(BeNil())
		Expect(*reply.Meta.Pages).To(Equal(3))
	})

	It("accepts an integral page count written as a float", func() {
		reply, err := decodeReply([]byte(`{"text":"A","meta":{"duration_ms":812,"pages":2.0}}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.Meta.Pages).NotTo(BeNil())
		Expect(*reply.Meta.Pages).To(Equal(2))
		Expect(*reply.Meta.DurationMs).To(BeNumerically("==", 812))
	})

	It("drops a fractional page count", func() {
		reply, err := decodeReply([]byte(`{"text":"A","meta":{"pages":1.5}}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.Meta.Pages).To(BeNil())
	})

	It("treats a missing text as empty", func() {
		reply, err := decodeReply([]byte(`{"engine":"tesseract"}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.Text).To(Equal(""))
		Expect(reply.Engine).To(Equal("tesseract"))
		Expect(reply.Meta).To(BeNil())
	})

	It("fails on a body that is not an object", func() {
		_, err := decodeReply([]byte(`<html>`))
		Expect(err).To(HaveOccurred())
	})
})
