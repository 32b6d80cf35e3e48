package sharding

//
//Copyright 2019 Telenor Digital AS
//
//Licensed under the Apache License, Version 2.0 (the "License");
//you may not use this file except in compliance with the License.
//You may obtain a copy of the License at
//
//http://www.apache.org/licenses/LICENSE-2.0
//
//Unless required by applicable law or agreed to in writing, software
//distributed under the License is distributed on an "AS IS" BASIS,
//WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//See the License for the specific language governing permissions and
//limitations under the License.
//
import (
	"crypto/sha1"
	"encoding/binary"
	"fmt"
)

// ShardFunc maps a key to a shard in the range [0, max)
type ShardFunc func(key interface{}) int

// HashPrefix returns the first 16 bits of the SHA-1 digest of the key,
// interpreted as a big endian unsigned integer. This is the same value as
// parsing the first four hex digits of the digest so other implementations
// using the hex representation will agree on the result.
func HashPrefix(key string) uint16 {
	sum := sha1.Sum([]byte(key))
	return binary.BigEndian.Uint16(sum[:2])
}

// Index returns the shard index for a key in a table with max shards.
func Index(key string, max int) int {
	if max <= 0 {
		panic("shard count must be positive")
	}
	return int(HashPrefix(key)) % max
}

// NewSHA1Sharder returns a ShardFunc for max shards. Keys that aren't strings
// or byte slices are converted with their default string representation.
func NewSHA1Sharder(max int) ShardFunc {
	if max <= 0 {
		panic("shard count must be positive")
	}
	return func(val interface{}) int {
		switch v := val.(type) {
		case string:
			return Index(v, max)
		case []byte:
			return Index(string(v), max)
		case fmt.Stringer:
			return Index(v.String(), max)
		default:
			return Index(fmt.Sprint(v), max)
		}
	}
}
