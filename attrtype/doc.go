/*
Package attrtype is the catalog of value types an attribute may declare.

Scalar types are String, Number, Boolean, Binary and Null. Aggregates are Map
and List. Derived types carry settings and, where their stored form differs
from the in-memory form, a bidirectional Converter:

	Date      time.Time in memory, epoch number or ISO string in the store
	Combine   string joined from other attributes
	Constant  a fixed literal
	Model     a referenced entity, stored as its hash key

Sets (StringSet, NumberSet, BinarySet, DateSet) hold distinct members of one
element type.

A Descriptor is obtained with Describe:

	d, err := attrtype.Describe(attrtype.DateOf(attrtype.StorageSeconds))
	if d.Is(time.Now(), attrtype.ToWire) {
	    stored, _ := d.Converter.ToWire(time.Now())
	}

Descriptors are immutable and safe for concurrent use.
*/
package attrtype
