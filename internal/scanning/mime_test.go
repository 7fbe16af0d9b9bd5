package scanning

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("InferMIME", func() {
	It("should map known image extensions", func() {
		Expect(InferMIME("fis.jpg")).To(Equal("image/jpeg"))
		Expect(InferMIME("fis.jpeg")).To(Equal("image/jpeg"))
		Expect(InferMIME("fis.png")).To(Equal("image/png"))
		Expect(InferMIME("fis.webp")).To(Equal("image/webp"))
		Expect(InferMIME("fis.gif")).To(Equal("image/gif"))
	})

	It("should match extensions case-insensitively", func() {
		Expect(InferMIME("SCAN_0001.JPG")).To(Equal("image/jpeg"))
		Expect(InferMIME("photo.PnG")).To(Equal("image/png"))
	})

	It("should work on full paths", func() {
		Expect(InferMIME("/tmp/uploads/market.jpeg")).To(Equal("image/jpeg"))
	})

	It("should fall back to the generic binary type", func() {
		Expect(InferMIME("fis.bmp")).To(Equal("application/octet-stream"))
		Expect(InferMIME("no-extension")).To(Equal("application/octet-stream"))
		Expect(InferMIME("")).To(Equal("application/octet-stream"))
	})
})
