// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the record types persisted in local storage.
// Timestamps are stored as unix microseconds.

// IDMUS serializes IDs as varints.
var IDMUS = idMUS{}

type idMUS struct{}

func (s idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	num, n, err := varint.Uint64.Unmarshal(bs)
	return ID(num), n, err
}

func (s idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

var timeMUS = timeMicroMUS{}

type timeMicroMUS struct{}

func (s timeMicroMUS) Marshal(v time.Time, bs []byte) (n int) {
	return varint.Int64.Marshal(v.UnixMicro(), bs)
}

func (s timeMicroMUS) Unmarshal(bs []byte) (v time.Time, n int, err error) {
	num, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(num).UTC(), n, nil
}

func (s timeMicroMUS) Size(v time.Time) (size int) {
	return varint.Int64.Size(v.UnixMicro())
}

// ConceptMetricMUS serializes ConceptMetric values.
var ConceptMetricMUS = conceptMetricMUS{}

type conceptMetricMUS struct{}

func (s conceptMetricMUS) Marshal(v ConceptMetric, bs []byte) (n int) {
	n = ord.String.Marshal(v.Concept, bs)
	n += varint.Uint64.Marshal(v.Count, bs[n:])
	n += timeMUS.Marshal(v.UpdatedAt, bs[n:])
	return
}

func (s conceptMetricMUS) Unmarshal(bs []byte) (v ConceptMetric, n int, err error) {
	v.Concept, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Count, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s conceptMetricMUS) Size(v ConceptMetric) (size int) {
	size = ord.String.Size(v.Concept)
	size += varint.Uint64.Size(v.Count)
	size += timeMUS.Size(v.UpdatedAt)
	return
}

// QueryRecordMUS serializes QueryRecord values.
var QueryRecordMUS = queryRecordMUS{}

type queryRecordMUS struct{}

func (s queryRecordMUS) Marshal(v QueryRecord, bs []byte) (n int) {
	n = ord.String.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Text, bs[n:])
	n += timeMUS.Marshal(v.AskedAt, bs[n:])
	return
}

func (s queryRecordMUS) Unmarshal(bs []byte) (v QueryRecord, n int, err error) {
	v.Id, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.AskedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s queryRecordMUS) Size(v QueryRecord) (size int) {
	size = ord.String.Size(v.Id)
	size += ord.String.Size(v.Text)
	size += timeMUS.Size(v.AskedAt)
	return
}

// FingerprintMUS serializes Fingerprint values.
var FingerprintMUS = fingerprintMUS{}

type fingerprintMUS struct{}

func (s fingerprintMUS) Marshal(v Fingerprint, bs []byte) (n int) {
	n = ord.String.Marshal(v.Link, bs)
	n += IDMUS.Marshal(v.Hash, bs[n:])
	n += timeMUS.Marshal(v.IndexedAt, bs[n:])
	return
}

func (s fingerprintMUS) Unmarshal(bs []byte) (v Fingerprint, n int, err error) {
	v.Link, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Hash, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.IndexedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s fingerprintMUS) Size(v Fingerprint) (size int) {
	size = ord.String.Size(v.Link)
	size += IDMUS.Size(v.Hash)
	size += timeMUS.Size(v.IndexedAt)
	return
}
