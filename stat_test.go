package vfat

import (
	"os"
	"testing"
	"time"
)

func TestFileInfo(t *testing.T) {
	vfat := treeImage(defaultGeometry()).mount(t)
	modified := time.Date(2017, 4, 17, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		path        string
		wantName    string
		wantSize    int64
		wantMode    os.FileMode
		wantModTime time.Time
		wantIsDir   bool
	}{
		{
			name:        "file",
			path:        "/README.TXT",
			wantName:    "README.TXT",
			wantSize:    readmeSize,
			wantMode:    0444,
			wantModTime: modified,
		},
		{
			name:        "long file name",
			path:        "/LONGFI~1.MD",
			wantName:    "Long File Name.md",
			wantSize:    longFileSize,
			wantMode:    0444,
			wantModTime: modified,
		},
		{
			name:        "directory",
			path:        "/A/B",
			wantName:    "B",
			wantMode:    os.ModeDir | 0555,
			wantModTime: modified,
			wantIsDir:   true,
		},
		{
			name:      "root without timestamps",
			path:      "/",
			wantName:  "/",
			wantMode:  os.ModeDir | 0555,
			wantIsDir: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := vfat.Open(tt.path)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}

			info := FileInfo(entry)
			if got := info.Name(); got != tt.wantName {
				t.Errorf("Name() = %v, want %v", got, tt.wantName)
			}
			if got := info.Size(); got != tt.wantSize {
				t.Errorf("Size() = %v, want %v", got, tt.wantSize)
			}
			if got := info.Mode(); got != tt.wantMode {
				t.Errorf("Mode() = %v, want %v", got, tt.wantMode)
			}
			if got := info.ModTime(); !got.Equal(tt.wantModTime) {
				t.Errorf("ModTime() = %v, want %v", got, tt.wantModTime)
			}
			if got := info.IsDir(); got != tt.wantIsDir {
				t.Errorf("IsDir() = %v, want %v", got, tt.wantIsDir)
			}

			meta, ok := info.Sys().(Metadata)
			if !ok {
				t.Fatalf("Sys() = %T, want Metadata", info.Sys())
			}
			if meta != entry.Metadata() {
				t.Errorf("Sys() = %v, want %v", meta, entry.Metadata())
			}
		})
	}
}
