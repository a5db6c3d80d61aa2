// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dlt

import (
	"encoding/binary"

	"github.com/danjacques/godlt/protocol/dlt/dlttest"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// payloadOf renders just the payload bytes of a fixture record.
func payloadOf(rec *dlttest.Record) []byte {
	data := rec.BytesNoStorage()
	return data[4+4+10:] // standard (with ticks), extended
}

var _ = Describe("DecodePayload", func() {
	var rec *dlttest.Record

	BeforeEach(func() {
		rec = &dlttest.Record{HasDeviceTicks: true}
	})

	It("decodes an empty payload to no items", func() {
		items, err := DecodePayload(nil, binary.LittleEndian)
		Expect(err).ToNot(HaveOccurred())
		Expect(items).To(BeEmpty())
	})

	It("decodes a mixed item sequence in order", func() {
		rec.AddString("brakes").
			AddUint32(4096).
			AddSint32(-17).
			AddFloat64(2.5).
			AddBool(true)

		items, err := DecodePayload(payloadOf(rec), rec.Order())
		Expect(err).ToNot(HaveOccurred())
		Expect(items).To(Equal([]Value{
			{Kind: KindString, Str: "brakes"},
			{Kind: KindUnsigned, Unsigned: 4096},
			{Kind: KindSigned, Signed: -17},
			{Kind: KindFloat, Float: 2.5},
			{Kind: KindBool, Bool: true},
		}))
	})

	It("decodes big-endian payloads identically", func() {
		rec.BigEndianPayload = true
		rec.AddString("brakes").
			AddSint16(-300).
			AddFloat32(1.5)

		items, err := DecodePayload(payloadOf(rec), rec.Order())
		Expect(err).ToNot(HaveOccurred())
		Expect(items).To(Equal([]Value{
			{Kind: KindString, Str: "brakes"},
			{Kind: KindSigned, Signed: -300},
			{Kind: KindFloat, Float: 1.5},
		}))
	})

	It("sign-extends narrow signed values", func() {
		rec.AddSint16(-1)

		items, err := DecodePayload(payloadOf(rec), rec.Order())
		Expect(err).ToNot(HaveOccurred())
		Expect(items[0].Signed).To(Equal(int64(-1)))
	})

	It("strips the NUL terminator from string values", func() {
		rec.AddString("")

		items, err := DecodePayload(payloadOf(rec), rec.Order())
		Expect(err).ToNot(HaveOccurred())
		Expect(items[0].Str).To(Equal(""))
	})

	Context("with malformed strings", func() {
		It("rejects a string whose extent omits the terminator", func() {
			rec.AddString("ok").AddStringMissingNul("broken")

			_, err := DecodePayload(payloadOf(rec), rec.Order())
			mse, ok := err.(*MalformedStringError)
			Expect(ok).To(BeTrue(), "got %v", err)

			// tag(4)+len(2)+"ok\0"(3) puts the second item at offset 9.
			Expect(mse.Off).To(Equal(9))
		})
	})

	Context("with unsupported tags", func() {
		It("aborts on a RAWD item, reporting its offset", func() {
			rec.AddBool(false).AddRawTag(0x00000400|2, []byte{1, 2})

			_, err := DecodePayload(payloadOf(rec), rec.Order())
			ute, ok := err.(*UnsupportedTagError)
			Expect(ok).To(BeTrue(), "got %v", err)
			Expect(ute.Off).To(Equal(5))
			Expect(ute.TypeInfo).To(Equal(uint32(0x00000402)))
		})

		It("aborts on a tag with no kind bit", func() {
			rec.AddRawTag(0x00000003, []byte{1, 2, 3, 4})

			_, err := DecodePayload(payloadOf(rec), rec.Order())
			Expect(err).To(BeAssignableToTypeOf(&UnsupportedTagError{}))
		})

		It("aborts on a 128-bit integer width", func() {
			rec.AddRawTag(0x00000040|5, nil)

			_, err := DecodePayload(payloadOf(rec), rec.Order())
			Expect(err).To(BeAssignableToTypeOf(&UnsupportedTagError{}))
		})
	})

	Context("with truncated items", func() {
		It("rejects a value cut short", func() {
			rec.AddRawTag(0x00000040|3, []byte{1, 2}) // declares 4 bytes, has 2

			_, err := DecodePayload(payloadOf(rec), rec.Order())
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("truncated"))
		})

		It("rejects a dangling tag fragment", func() {
			_, err := DecodePayload([]byte{0x40, 0x00}, binary.LittleEndian)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("truncated"))
		})
	})

	It("never exposes a partial sequence on failure", func() {
		rec.AddBool(true).AddRawTag(0x00004000, nil)

		items, err := DecodePayload(payloadOf(rec), rec.Order())
		Expect(err).To(HaveOccurred())
		Expect(items).To(BeNil())
	})
})
