package vfat

import (
	"fmt"
	"strings"
	"time"
)

// Attributes is the attribute byte of a directory entry.
type Attributes uint8

// Attribute bits of a directory entry.
const (
	AttrReadOnly  Attributes = 0x01
	AttrHidden    Attributes = 0x02
	AttrSystem    Attributes = 0x04
	AttrVolumeID  Attributes = 0x08
	AttrDirectory Attributes = 0x10
	AttrArchive   Attributes = 0x20

	// AttrLongName marks a long file name record.
	AttrLongName = AttrReadOnly | AttrHidden | AttrSystem | AttrVolumeID
)

func (a Attributes) ReadOnly() bool    { return a&AttrReadOnly != 0 }
func (a Attributes) Hidden() bool      { return a&AttrHidden != 0 }
func (a Attributes) System() bool      { return a&AttrSystem != 0 }
func (a Attributes) VolumeID() bool    { return a&AttrVolumeID != 0 }
func (a Attributes) IsDirectory() bool { return a&AttrDirectory != 0 }
func (a Attributes) Archive() bool     { return a&AttrArchive != 0 }

// IsLongName reports whether read-only, hidden, system and volume-id are all set.
func (a Attributes) IsLongName() bool {
	return a&AttrLongName == AttrLongName
}

func (a Attributes) String() string {
	flags := []struct {
		attr Attributes
		c    byte
	}{
		{AttrReadOnly, 'r'},
		{AttrHidden, 'h'},
		{AttrSystem, 's'},
		{AttrVolumeID, 'v'},
		{AttrDirectory, 'd'},
		{AttrArchive, 'a'},
	}

	var b strings.Builder
	for _, f := range flags {
		if a&f.attr != 0 {
			b.WriteByte(f.c)
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

// Date is a packed FAT date, see ParseDate.
type Date uint16

// Time is a packed FAT time, see ParseTime.
type Time uint16

// Timestamp is a date and time as stored in a directory entry.
type Timestamp struct {
	Date Date
	Time Time
}

// Year returns the calendar year, e.g. 2009.
func (t Timestamp) Year() int { return int(t.Date>>9&0x7F) + 1980 }

// Month returns the month starting at 1 for January.
func (t Timestamp) Month() int { return int(t.Date >> 5 & 0x0F) }

// Day returns the day of month starting at 1.
func (t Timestamp) Day() int { return int(t.Date & 0x1F) }

// Hour returns the hour in 24 hour format.
func (t Timestamp) Hour() int { return int(t.Time >> 11 & 0x1F) }

// Minute returns the minute.
func (t Timestamp) Minute() int { return int(t.Time >> 5 & 0x3F) }

// Second returns the second. FAT only stores even seconds.
func (t Timestamp) Second() int { return int(t.Time&0x1F) * 2 }

// AsTime converts the timestamp to a UTC time.Time.
// It returns time.Time{} if the date is not valid.
func (t Timestamp) AsTime() time.Time {
	return ParseDateTime(uint16(t.Date), uint16(t.Time))
}

func (t Timestamp) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// Metadata holds the attributes, timestamps and first cluster of a directory entry.
type Metadata struct {
	Attributes Attributes

	// CreatedTenths holds the sub 2 second part of the creation time in units of 10ms.
	CreatedTenths uint8
	Created       Timestamp
	// Accessed only contains a date.
	Accessed Timestamp
	Modified Timestamp

	FirstClusterHigh uint16
	FirstClusterLow  uint16
}

func newMetadata(e *regularDirEntry) Metadata {
	return Metadata{
		Attributes:       e.Attributes,
		CreatedTenths:    e.CreateTimeTenth,
		Created:          Timestamp{Date: Date(e.CreateDate), Time: Time(e.CreateTime)},
		Accessed:         Timestamp{Date: Date(e.LastAccessDate)},
		Modified:         Timestamp{Date: Date(e.WriteDate), Time: Time(e.WriteTime)},
		FirstClusterHigh: e.FirstClusterHI,
		FirstClusterLow:  e.FirstClusterLO,
	}
}

// FirstCluster combines both halves of the first cluster number.
func (m Metadata) FirstCluster() Cluster {
	return clusterFromHalves(m.FirstClusterHigh, m.FirstClusterLow)
}

func (m Metadata) String() string {
	return fmt.Sprintf("attributes=%v created=%v accessed=%04d-%02d-%02d modified=%v",
		m.Attributes, m.Created, m.Accessed.Year(), m.Accessed.Month(), m.Accessed.Day(), m.Modified)
}
