// Package descriptor holds the data model of the dynamic registry: groups,
// compiled field schemas and descriptors, plus the conversions to and from
// the persisted record format.
//
// A descriptor is identified by its qualified key, `<group>_<id>`. The same
// key is used by the local catalog, by the host catalog mirror and, split
// back into group and id, by the on-disk layout of the file store.
//
// Field order is significant everywhere. Field lists arrive as JSON objects
// and are decoded into ordered maps, so the order an operator writes fields
// in is the order adapters emit their outputs in.
package descriptor
