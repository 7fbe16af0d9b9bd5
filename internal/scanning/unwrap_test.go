package scanning

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("extractMessageText", func() {
	var (
		body   string
		result string
	)

	JustBeforeEach(func() {
		result = extractMessageText([]byte(body))
	})

	When("content is a plain string", func() {
		BeforeEach(func() {
			body = `{"choices":[{"message":{"content":"  hello world  "}}]}`
		})

		It("should return it trimmed", func() {
			Expect(result).To(Equal("hello world"))
		})
	})

	When("content is a list of text parts", func() {
		BeforeEach(func() {
			body = `{"choices":[{"message":{"content":[{"type":"text","text":"Hel"},{"type":"text","text":"lo"}]}}]}`
		})

		It("should accumulate the parts in order", func() {
			Expect(result).To(Equal("Hello"))
		})
	})

	When("content mixes part shapes", func() {
		BeforeEach(func() {
			body = `{"choices":[{"message":{"content":[
				{"type":"output_text","text":"A"},
				{"type":"image_url","image_url":{"url":"x"}},
				"stray string",
				{"type":"text","text":42},
				{"type":"text","text":"B"}
			]}}]}`
		})

		It("should keep only well-formed text parts", func() {
			Expect(result).To(Equal("AB"))
		})
	})

	When("content is a whitespace-only string", func() {
		BeforeEach(func() {
			body = `{"choices":[{"message":{"content":"   "}}]}`
		})

		It("should fall back to the raw body", func() {
			Expect(result).To(Equal(body))
		})
	})

	When("choices is empty", func() {
		BeforeEach(func() {
			body = `{"choices":[]}`
		})

		It("should fall back to the raw body", func() {
			Expect(result).To(Equal(body))
		})
	})

	When("the body is not valid JSON", func() {
		BeforeEach(func() {
			body = `<html>502 Bad Gateway</html>`
		})

		It("should fall back to the raw body", func() {
			Expect(result).To(Equal(body))
		})
	})

	When("the envelope has unexpected shapes along the path", func() {
		BeforeEach(func() {
			body = `{"choices":[{"message":"not an object"}]}`
		})

		It("should fall back to the raw body", func() {
			Expect(result).To(Equal(body))
		})
	})
})
