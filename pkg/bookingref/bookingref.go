// Package bookingref turns numeric booking ids into short customer-facing
// references like "SP-8K2QX7" and back.
package bookingref

import (
	"errors"
	"strings"

	"github.com/speps/go-hashids/v2"
)

const (
	prefix    = "SP-"
	alphabet  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	minLength = 6
)

var ErrInvalidRef = errors.New("invalid booking reference")

type Codec struct {
	h *hashids.HashID
}

func New(salt string) (*Codec, error) {
	hd := hashids.NewData()
	hd.Salt = salt
	hd.Alphabet = alphabet
	hd.MinLength = minLength

	h, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, err
	}
	return &Codec{h: h}, nil
}

func (c *Codec) Encode(id int64) (string, error) {
	s, err := c.h.EncodeInt64([]int64{id})
	if err != nil {
		return "", err
	}
	return prefix + s, nil
}

// Decode accepts the reference with or without prefix, in any case.
func (c *Codec) Decode(ref string) (int64, error) {
	ref = strings.ToUpper(strings.TrimSpace(ref))
	ref = strings.TrimPrefix(ref, prefix)
	if ref == "" {
		return 0, ErrInvalidRef
	}
	ids, err := c.h.DecodeInt64WithError(ref)
	if err != nil || len(ids) != 1 {
		return 0, ErrInvalidRef
	}
	return ids[0], nil
}
