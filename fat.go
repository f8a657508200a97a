package vfat

import "fmt"

// StatusKind classifies a FAT entry.
type StatusKind int

const (
	// StatusFree marks an unused cluster.
	StatusFree StatusKind = iota
	// StatusReserved marks a reserved cluster.
	StatusReserved
	// StatusData marks a data cluster which is followed by Status.Next.
	StatusData
	// StatusBad marks a cluster on a failed part of the disk.
	StatusBad
	// StatusEOC marks the last data cluster of a chain. Status.Raw holds the raw entry.
	StatusEOC
)

func (k StatusKind) String() string {
	switch k {
	case StatusFree:
		return "free"
	case StatusReserved:
		return "reserved"
	case StatusData:
		return "data"
	case StatusBad:
		return "bad"
	case StatusEOC:
		return "eoc"
	default:
		return fmt.Sprintf("StatusKind(%d)", int(k))
	}
}

// Status is the decoded meaning of a FatEntry.
type Status struct {
	Kind StatusKind
	// Next is the following cluster, only set for StatusData.
	Next Cluster
	// Raw is the unmasked entry value, only set for StatusEOC.
	Raw uint32
}

func (s Status) String() string {
	switch s.Kind {
	case StatusData:
		return fmt.Sprintf("data(%d)", s.Next)
	case StatusEOC:
		return fmt.Sprintf("eoc(0x%08X)", s.Raw)
	default:
		return s.Kind.String()
	}
}

// FatEntry is one 32 bit slot of the file allocation table.
type FatEntry uint32

const fatEntrySize = 4

// Status classifies the entry by its lower 28 bits.
func (e FatEntry) Status() Status {
	switch value := uint32(e) & clusterMask; {
	case value == 0:
		return Status{Kind: StatusFree}
	case value == 1:
		return Status{Kind: StatusReserved}
	case value <= 0x0FFFFFEF:
		return Status{Kind: StatusData, Next: Cluster(value)}
	case value <= 0x0FFFFFF6:
		return Status{Kind: StatusReserved}
	case value == 0x0FFFFFF7:
		return Status{Kind: StatusBad}
	default:
		return Status{Kind: StatusEOC, Raw: uint32(e)}
	}
}
