package stakelist

import "encoding/binary"

func readU16LE(b []byte) uint16     { return binary.LittleEndian.Uint16(b) }
func readI64LE(b []byte) int64      { return int64(binary.LittleEndian.Uint64(b)) }
func writeU16LE(b []byte, v uint16) { binary.LittleEndian.PutUint16(b, v) }
func writeI64LE(b []byte, v int64)  { binary.LittleEndian.PutUint64(b, uint64(v)) }
