package blockdev

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(sectors int, sectorSize int) []byte {
	data := make([]byte, sectors*sectorSize)
	for i := range data {
		data[i] = byte(i / sectorSize)
	}
	return data
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		sectorSize uint64
		want       uint64
	}{
		{name: "default", sectorSize: 0, want: DefaultSectorSize},
		{name: "512", sectorSize: 512, want: 512},
		{name: "4096", sectorSize: 4096, want: 4096},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(bytes.NewReader(nil), tt.sectorSize)
			assert.Equal(t, tt.want, d.SectorSize())
		})
	}
}

func TestDevice_ReadSector(t *testing.T) {
	d := New(bytes.NewReader(testImage(4, 512)), 512)

	t.Run("whole sector", func(t *testing.T) {
		buf := make([]byte, 512)
		n, err := d.ReadSector(2, buf)
		require.NoError(t, err)
		assert.Equal(t, 512, n)
		assert.Equal(t, bytes.Repeat([]byte{2}, 512), buf)
	})

	t.Run("larger buffer reads only one sector", func(t *testing.T) {
		buf := make([]byte, 1024)
		n, err := d.ReadSector(1, buf)
		require.NoError(t, err)
		assert.Equal(t, 512, n)
		assert.Equal(t, byte(0), buf[512])
	})

	t.Run("smaller buffer", func(t *testing.T) {
		buf := make([]byte, 16)
		n, err := d.ReadSector(3, buf)
		require.NoError(t, err)
		assert.Equal(t, 16, n)
		assert.Equal(t, bytes.Repeat([]byte{3}, 16), buf)
	})

	t.Run("beyond the end", func(t *testing.T) {
		buf := make([]byte, 512)
		n, err := d.ReadSector(4, buf)
		assert.Error(t, err)
		assert.Equal(t, 0, n)
	})
}

func TestDevice_ReadSector_shortLastSector(t *testing.T) {
	d := New(bytes.NewReader(testImage(1, 512)[:300]), 512)

	buf := make([]byte, 512)
	n, err := d.ReadSector(0, buf)
	require.NoError(t, err)
	assert.Equal(t, 300, n)
}

func TestDevice_WriteSector(t *testing.T) {
	d := New(bytes.NewReader(testImage(1, 512)), 512)

	n, err := d.WriteSector(0, make([]byte, 512))
	assert.Equal(t, 0, n)
	assert.True(t, errors.Is(err, ErrReadOnly))
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	require.NoError(t, os.WriteFile(path, testImage(8, 512), 0o600))

	t.Run("regular file uses the default sector size", func(t *testing.T) {
		d, err := Open(path, 0)
		require.NoError(t, err)
		defer d.Close()

		assert.Equal(t, uint64(DefaultSectorSize), d.SectorSize())

		buf := make([]byte, 512)
		_, err = d.ReadSector(7, buf)
		require.NoError(t, err)
		assert.Equal(t, byte(7), buf[0])
	})

	t.Run("explicit sector size", func(t *testing.T) {
		d, err := Open(path, 1024)
		require.NoError(t, err)
		defer d.Close()

		buf := make([]byte, 1024)
		n, err := d.ReadSector(1, buf)
		require.NoError(t, err)
		assert.Equal(t, 1024, n)
		assert.Equal(t, byte(2), buf[0])
		assert.Equal(t, byte(3), buf[1023])
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Open(filepath.Join(t.TempDir(), "missing.img"), 0)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})
}

func TestDevice_Close(t *testing.T) {
	assert.NoError(t, New(bytes.NewReader(nil), 0).Close())
}
