package utils

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	qt "github.com/frankban/quicktest"
)

func fileHeader(c *qt.C, name, contentType string, body []byte) *multipart.FileHeader {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="photo"; filename="`+name+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	c.Assert(err, qt.IsNil)
	_, err = part.Write(body)
	c.Assert(err, qt.IsNil)
	c.Assert(w.Close(), qt.IsNil)

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	c.Assert(err, qt.IsNil)
	c.Cleanup(func() { form.RemoveAll() })
	return form.File["photo"][0]
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestR2StoreSave(t *testing.T) {
	c := qt.New(t)
	putter := &fakePutter{}
	store := &R2Store{Client: putter, Bucket: "photos", CDNBaseURL: "https://cdn.example.org"}

	url, err := store.Save(context.Background(), fileHeader(c, "dal.jpg", "image/jpeg", []byte("jpeg")), "food/1/abc.jpg")
	c.Assert(err, qt.IsNil)
	c.Assert(url, qt.Equals, "https://cdn.example.org/food/1/abc.jpg")
	c.Assert(*putter.input.Bucket, qt.Equals, "photos")
	c.Assert(*putter.input.Key, qt.Equals, "food/1/abc.jpg")
	c.Assert(*putter.input.ContentType, qt.Equals, "image/jpeg")
	c.Assert(string(putter.body), qt.Equals, "jpeg")
}

func TestLocalStoreSave(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/uploads")
	c.Assert(err, qt.IsNil)

	url, err := store.Save(context.Background(), fileHeader(c, "rice.png", "image/png", []byte("png")), "food/2/xyz.png")
	c.Assert(err, qt.IsNil)
	c.Assert(url, qt.Equals, "/uploads/food/2/xyz.png")

	data, err := os.ReadFile(filepath.Join(dir, "food", "2", "xyz.png"))
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, "png")
}
