// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package reader

import (
	"bytes"
	"io"
	"testing/iotest"

	"github.com/danjacques/godlt/message"
	"github.com/danjacques/godlt/protocol/dlt/dlttest"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// drainStream collects every message the stream yields.
func drainStream(s *Stream) []*message.Message {
	var msgs []*message.Message
	for {
		m, err := s.Next()
		if err == io.EOF {
			return msgs
		}
		Expect(err).ToNot(HaveOccurred())
		msgs = append(msgs, m)
	}
}

var _ = Describe("Stream", func() {
	recA := (&dlttest.Record{App: "APPA", Ctx: "CTX1"}).AddString("alpha")
	recB := (&dlttest.Record{App: "APPB", Ctx: "CTX2"}).AddString("beta").AddUint32(7)

	It("yields every verbose record in original order", func() {
		s := NewStream(bytes.NewReader(dlttest.Concat(recA.Bytes(), recB.Bytes())), &StreamOptions{
			ExpectStorageHeader: true,
		})

		msgs := drainStream(s)
		Expect(msgs).To(HaveLen(2))
		Expect(msgs[0].App).To(Equal("APPA"))
		Expect(msgs[1].App).To(Equal("APPB"))
		Expect(msgs[1].HumanFriendly()).To(Equal("beta 7"))
	})

	It("decodes identically regardless of chunking", func() {
		data := dlttest.Concat(recA.Bytes(), recB.Bytes())

		whole := drainStream(NewStream(bytes.NewReader(data), &StreamOptions{
			ExpectStorageHeader: true,
		}))
		byteAtATime := drainStream(NewStream(iotest.OneByteReader(bytes.NewReader(data)), &StreamOptions{
			ExpectStorageHeader: true,
		}))

		Expect(byteAtATime).To(HaveLen(len(whole)))
		for i := range whole {
			Expect(byteAtATime[i].App).To(Equal(whole[i].App))
			Expect(byteAtATime[i].Ctx).To(Equal(whole[i].Ctx))
			Expect(byteAtATime[i].RawPayload).To(Equal(whole[i].RawPayload))
		}
	})

	It("never yields a non-verbose message, even unfiltered", func() {
		nv := &dlttest.Record{App: "APPN", Ctx: "CTXN", NonVerbose: true}
		noExt := &dlttest.Record{NoExtendedHeader: true}

		s := NewStream(bytes.NewReader(dlttest.Concat(nv.Bytes(), noExt.Bytes(), recA.Bytes())), &StreamOptions{
			ExpectStorageHeader: true,
		})

		msgs := drainStream(s)
		Expect(msgs).To(HaveLen(1))
		Expect(msgs[0].Verbose).To(BeTrue())
	})

	It("applies filters", func() {
		s := NewStream(bytes.NewReader(dlttest.Concat(recA.Bytes(), recB.Bytes())), &StreamOptions{
			ExpectStorageHeader: true,
			Filters:             message.FilterSet{{App: "APPB", Ctx: "CTX2"}},
		})

		msgs := drainStream(s)
		Expect(msgs).To(HaveLen(1))
		Expect(msgs[0].App).To(Equal("APPB"))
	})

	Context("resynchronization", func() {
		It("survives garbage between records", func() {
			garbage := []byte{0xDE, 0xAD, 0xBE, 0xEF}
			data := dlttest.Concat(recA.Bytes(), garbage, recB.Bytes())

			s := NewStream(iotest.OneByteReader(bytes.NewReader(data)), &StreamOptions{
				ExpectStorageHeader: true,
			})

			msgs := drainStream(s)
			Expect(msgs).To(HaveLen(2))
			Expect(msgs[1].App).To(Equal("APPB"))
		})

		It("ends cleanly when corruption is followed by nothing decodable", func() {
			data := dlttest.Concat(recA.Bytes(), bytes.Repeat([]byte{0xFF}, 32))

			s := NewStream(bytes.NewReader(data), &StreamOptions{
				ExpectStorageHeader: true,
			})

			msgs := drainStream(s)
			Expect(msgs).To(HaveLen(1))
		})
	})

	Context("without storage headers", func() {
		It("decodes daemon-framed records", func() {
			data := dlttest.Concat(recA.BytesNoStorage(), recB.BytesNoStorage())

			s := NewStream(bytes.NewReader(data), &StreamOptions{})

			msgs := drainStream(s)
			Expect(msgs).To(HaveLen(2))
			Expect(msgs[0].Date.IsZero()).To(BeTrue())
			Expect(msgs[0].HumanFriendly()).To(Equal("alpha"))
		})
	})

	It("discards a trailing partial record", func() {
		data := dlttest.Concat(recA.Bytes(), recB.Bytes()[:10])

		s := NewStream(bytes.NewReader(data), &StreamOptions{
			ExpectStorageHeader: true,
		})

		msgs := drainStream(s)
		Expect(msgs).To(HaveLen(1))
	})

	It("handles an empty source", func() {
		s := NewStream(bytes.NewReader(nil), &StreamOptions{ExpectStorageHeader: true})

		_, err := s.Next()
		Expect(err).To(Equal(io.EOF))
	})

	It("tracks the consumed offset", func() {
		a := recA.Bytes()
		s := NewStream(bytes.NewReader(dlttest.Concat(a, recB.Bytes())), &StreamOptions{
			ExpectStorageHeader: true,
		})

		_, err := s.Next()
		Expect(err).ToNot(HaveOccurred())
		Expect(s.Offset()).To(Equal(int64(len(a))))
	})
})
