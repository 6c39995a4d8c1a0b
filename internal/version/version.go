package version

import "strconv"

type Version struct {
	MajorNumber int64
	MinorNumber int64
	PatchNumber int64
}

// String generate a human readable Version
func (m *Version) String() string {
	return strconv.FormatInt(m.MajorNumber, 10) + "." + strconv.FormatInt(m.MinorNumber, 10) + "." + strconv.FormatInt(m.PatchNumber, 10)
}

// UserAgent is sent with every upstream request
func (m *Version) UserAgent() string {
	return AppName + "/" + m.String()
}

const AppName = "departureboard"

var (
	AppVersion = Version{
		MajorNumber: 0,
		MinorNumber: 4,
		PatchNumber: 0,
	}
)
