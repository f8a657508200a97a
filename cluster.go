package vfat

// Cluster is the 28 bit index of a cluster. The upper 4 bits of a raw value are reserved.
type Cluster uint32

const (
	clusterMask = 0x0FFFFFFF

	// firstDataCluster is the number of the first cluster in the data region. 0 and 1 are reserved.
	firstDataCluster Cluster = 2
)

// ClusterFrom masks off the reserved upper 4 bits of raw.
func ClusterFrom(raw uint32) Cluster {
	return Cluster(raw & clusterMask)
}

// clusterFromHalves builds a cluster from the high and low 16 bit halves stored in a directory entry.
func clusterFromHalves(high, low uint16) Cluster {
	return ClusterFrom(uint32(high)<<16 | uint32(low))
}

// IsData reports whether c can hold data.
func (c Cluster) IsData() bool {
	return c >= firstDataCluster
}
