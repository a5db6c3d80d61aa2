// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package reader

import (
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/danjacques/godlt/message"
	"github.com/danjacques/godlt/protocol/dlt/dlttest"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// drainFile collects every message the file yields.
func drainFile(f *File) []*message.Message {
	var msgs []*message.Message
	for {
		m, err := f.Next()
		if err == io.EOF {
			return msgs
		}
		Expect(err).ToNot(HaveOccurred())
		msgs = append(msgs, m)
	}
}

var _ = Describe("File", func() {
	var tdir string

	BeforeEach(func() {
		var err error
		tdir, err = ioutil.TempDir("", "godlt")
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		Expect(os.RemoveAll(tdir)).To(Succeed())
	})

	write := func(data []byte) string {
		path := filepath.Join(tdir, "input.dlt")
		Expect(ioutil.WriteFile(path, data, 0644)).To(Succeed())
		return path
	}

	open := func(data []byte, opts *FileOptions) *File {
		f, err := OpenFile(write(data), opts)
		Expect(err).ToNot(HaveOccurred())
		return f
	}

	recA := (&dlttest.Record{App: "APPA", Ctx: "CTX1"}).AddString("alpha")
	recB := (&dlttest.Record{App: "APPB", Ctx: "CTX2"}).AddString("beta")
	recC := (&dlttest.Record{App: "APPA", Ctx: "CTX2"}).AddUint32(42)

	It("yields every record in original order", func() {
		f := open(dlttest.Concat(recA.Bytes(), recB.Bytes(), recC.Bytes()), nil)
		defer f.Close()

		msgs := drainFile(f)
		Expect(msgs).To(HaveLen(3))
		Expect(msgs[0].App).To(Equal("APPA"))
		Expect(msgs[0].HumanFriendly()).To(Equal("alpha"))
		Expect(msgs[1].App).To(Equal("APPB"))
		Expect(msgs[2].HumanFriendly()).To(Equal("42"))

		Expect(f.Offset()).To(Equal(f.Size()))
	})

	It("reports offset and size for progress", func() {
		a := recA.Bytes()
		f := open(dlttest.Concat(a, recB.Bytes()), nil)
		defer f.Close()

		Expect(f.Offset()).To(Equal(int64(0)))
		_, err := f.Next()
		Expect(err).ToNot(HaveOccurred())
		Expect(f.Offset()).To(Equal(int64(len(a))))
	})

	Context("resynchronization", func() {
		It("survives garbage between two records", func() {
			garbage := []byte{0xDE, 0xAD, 0xBE, 0xEF, 'D', 'L', 'T', 0x02}
			f := open(dlttest.Concat(recA.Bytes(), garbage, recB.Bytes()), nil)
			defer f.Close()

			msgs := drainFile(f)
			Expect(msgs).To(HaveLen(2))
			Expect(msgs[0].App).To(Equal("APPA"))
			Expect(msgs[1].App).To(Equal("APPB"))
		})

		It("survives garbage at the start of the file", func() {
			f := open(dlttest.Concat([]byte{1, 2, 3}, recA.Bytes()), nil)
			defer f.Close()

			msgs := drainFile(f)
			Expect(msgs).To(HaveLen(1))
			Expect(msgs[0].App).To(Equal("APPA"))
		})

		It("ends cleanly when a declared length exceeds the file", func() {
			overlong := &dlttest.Record{App: "APPB", Ctx: "CTX2", LengthDelta: 4096}
			overlong.AddString("never completes")

			f := open(dlttest.Concat(recA.Bytes(), overlong.Bytes()), nil)
			defer f.Close()

			msgs := drainFile(f)
			Expect(msgs).To(HaveLen(1))
			Expect(msgs[0].App).To(Equal("APPA"))
			Expect(f.Offset()).To(Equal(f.Size()))
		})

		It("never loses records after a corrupt one", func() {
			corrupted := recA.Bytes()
			corrupted[18] ^= 0xFF // high byte of the declared length

			f := open(dlttest.Concat(corrupted, recB.Bytes()), nil)
			defer f.Close()

			msgs := drainFile(f)
			Expect(msgs).To(HaveLen(1))
			Expect(msgs[0].App).To(Equal("APPB"))
		})
	})

	Context("verbosity", func() {
		nv := &dlttest.Record{App: "APPN", Ctx: "CTXN", NonVerbose: true}

		It("drops non-verbose records by default", func() {
			f := open(dlttest.Concat(recA.Bytes(), nv.Bytes(), recB.Bytes()), nil)
			defer f.Close()

			msgs := drainFile(f)
			Expect(msgs).To(HaveLen(2))
		})

		It("includes non-verbose records when asked", func() {
			f := open(dlttest.Concat(recA.Bytes(), nv.Bytes()), &FileOptions{
				IncludeNonVerbose: true,
			})
			defer f.Close()

			msgs := drainFile(f)
			Expect(msgs).To(HaveLen(2))
			Expect(msgs[1].Verbose).To(BeFalse())
		})
	})

	Context("filtering", func() {
		all := dlttest.Concat(recA.Bytes(), recB.Bytes(), recC.Bytes())

		It("returns everything with an empty filter set", func() {
			f := open(all, &FileOptions{})
			defer f.Close()
			Expect(drainFile(f)).To(HaveLen(3))
		})

		It("retains only exact (app, ctx) matches", func() {
			f := open(all, &FileOptions{
				Filters: message.FilterSet{{App: "APPA", Ctx: "CTX2"}},
			})
			defer f.Close()

			msgs := drainFile(f)
			Expect(msgs).To(HaveLen(1))
			Expect(msgs[0].Ctx).To(Equal("CTX2"))
		})

		It("matches wildcard fields against anything", func() {
			f := open(all, &FileOptions{
				Filters: message.FilterSet{{App: "APPA"}},
			})
			defer f.Close()
			Expect(drainFile(f)).To(HaveLen(2))
		})
	})

	Context("raw capture", func() {
		It("copies the exact record bytes", func() {
			a := recA.Bytes()
			f := open(dlttest.Concat(a, recB.Bytes()), &FileOptions{CaptureRaw: true})
			defer f.Close()

			msgs := drainFile(f)
			Expect(msgs[0].Raw).To(Equal(a))
		})

		It("captures nothing by default", func() {
			f := open(recA.Bytes(), nil)
			defer f.Close()

			msgs := drainFile(f)
			Expect(msgs[0].Raw).To(BeNil())
		})
	})

	It("handles an empty file", func() {
		f := open(nil, nil)
		defer f.Close()

		_, err := f.Next()
		Expect(err).To(Equal(io.EOF))
	})
})
