package vfat

// Entry is a single entry of a directory. It is either a *File or a *Dir.
type Entry interface {
	// Name returns the long name if there is one and the short name otherwise.
	Name() string
	// ShortName returns the 8.3 name, e.g. "README.TXT".
	ShortName() string
	// LongName returns the name assembled from the long file name records or "".
	LongName() string
	Metadata() Metadata
	IsDir() bool

	// AsFile returns the entry as *File if it is a file.
	AsFile() (*File, bool)
	// AsDir returns the entry as *Dir if it is a directory.
	AsDir() (*Dir, bool)
}

// entryHeader contains everything Dir and File share.
type entryHeader struct {
	fs           *VFat
	shortName    string
	longName     string
	metadata     Metadata
	firstCluster Cluster
}

func (h *entryHeader) Name() string {
	if h.longName != "" {
		return h.longName
	}
	return h.shortName
}

func (h *entryHeader) ShortName() string {
	return h.shortName
}

func (h *entryHeader) LongName() string {
	return h.longName
}

func (h *entryHeader) Metadata() Metadata {
	return h.metadata
}

// FirstCluster returns the cluster the content of the entry starts at.
func (h *entryHeader) FirstCluster() Cluster {
	return h.firstCluster
}
