package cache

import (
	"encoding/binary"
	"encoding/hex"
	"image"
	"strings"

	"github.com/zeebo/blake3"
)

// keyDomain separates derivative keys from any other BLAKE3 use. It is the
// ASCII domain name zero-padded to 32 bytes; changing it invalidates every
// existing cache file.
var keyDomain = [32]byte{
	'a', 's', 's', 'e', 't', '_', 'b', 'r', 'i', 'd', 'g', 'e', '.', 'c', 'a', 'c',
	'h', 'e', '.', 'k', 'e', 'y', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// keyLen is the number of hex characters kept from the digest.
const keyLen = 40

// Key hashes the transformed pixels together with the output format and
// quality. Identical pixels under identical encoding settings share a key.
func Key(img *image.NRGBA, format string, quality int) string {
	h := newHasher(format, quality)
	b := img.Bounds()
	var dims [8]byte
	binary.BigEndian.PutUint32(dims[:4], uint32(b.Dx()))
	binary.BigEndian.PutUint32(dims[4:], uint32(b.Dy()))
	_, _ = h.Write(dims[:])
	rowLen := b.Dx() * 4
	for y := 0; y < b.Dy(); y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		_, _ = h.Write(img.Pix[off : off+rowLen])
	}
	return digest(h)
}

// KeyBytes hashes raw file content, used for sources copied verbatim.
func KeyBytes(data []byte, format string, quality int) string {
	h := newHasher(format, quality)
	_, _ = h.Write(data)
	return digest(h)
}

func newHasher(format string, quality int) *blake3.Hasher {
	h, err := blake3.NewKeyed(keyDomain[:])
	if err != nil {
		// NewKeyed only fails for keys that are not 32 bytes.
		panic(err)
	}
	var q [4]byte
	binary.BigEndian.PutUint32(q[:], uint32(int32(quality)))
	_, _ = h.WriteString(strings.ToLower(format) + "\x00")
	_, _ = h.Write(q[:])
	return h
}

func digest(h *blake3.Hasher) string {
	return hex.EncodeToString(h.Sum(nil))[:keyLen]
}
