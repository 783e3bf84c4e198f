package engine

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ZB94/bin2json/internal/bits"
	"github.com/ZB94/bin2json/pkg/schema"
	"github.com/ZB94/bin2json/pkg/sizing"
	"github.com/ZB94/bin2json/pkg/value"
)

// errDeferred signals a Checksum/Sign field isn't ready to encode yet in
// this pass because a field in its covered region hasn't been encoded.
var errDeferred = errors.New("engine: field deferred to next pass")

// readStruct performs ordered field traversal maintaining
// key_pos (bit offsets) and result (decoded values), with Checksum/Sign
// special-cased against the raw region and everything else normalized and
// dispatched through readField.
func readStruct(ty *schema.Type, data bits.Buffer, depth int, opts Options) (value.Value, bits.Buffer, error) {
	if opts.Limits.MaxDepth > 0 && depth > opts.Limits.MaxDepth {
		return value.Value{}, bits.Buffer{}, ErrMaxDepthExceeded
	}

	region, rest, err := resolveAndSplit(ty.Size, data, noFieldLookup)
	if err != nil {
		return value.Value{}, bits.Buffer{}, err
	}

	obj := value.NewObj()
	lookup := func(name string) (value.Value, bool) { return obj.Get(name) }
	keyPos := make(map[string]int, len(ty.Fields))
	cur := region
	offset := 0

	for _, f := range ty.Fields {
		keyPos[f.Name] = offset

		var v value.Value
		var n int
		switch f.Type.Kind {
		case schema.KindChecksum:
			v, n, err = readChecksumField(f.Type, region, offset, keyPos, cur)
		case schema.KindSign:
			v, n, err = readSignField(f.Type, region, offset, keyPos, cur, lookup)
		default:
			var tail bits.Buffer
			v, tail, err = readField(f.Type, cur, lookup, depth, opts)
			if err == nil {
				n = cur.Len() - tail.Len()
			}
		}
		if err != nil {
			return value.Value{}, bits.Buffer{}, withReadField(err, f.Name, offset)
		}

		obj.Set(f.Name, v)
		if _, tail, serr := cur.SplitAt(n); serr == nil {
			cur = tail
		} else {
			return value.Value{}, bits.Buffer{}, withReadField(schema.ErrIncomplete, f.Name, offset)
		}
		offset += n
	}

	return value.NewObject(obj), rest, nil
}

// readField normalizes a single struct field's type against already
// decoded sibling values and reads it: Enum
// substitution, Array Length::By resolution, and outer BytesSize
// resolution for String/Bin/Struct/Array/Encrypt/Enum fields.
func readField(ft *schema.Type, cur bits.Buffer, lookup sizing.FieldLookup, depth int, opts Options) (value.Value, bits.Buffer, error) {
	effective := ft
	outerSize := ft.Size

	if ft.Kind == schema.KindEnum {
		keyVal, ok := lookup(ft.By)
		if !ok {
			return value.Value{}, bits.Buffer{}, fmt.Errorf("%w: %q", schema.ErrByKeyNotFound, ft.By)
		}
		key, ok := keyVal.AsInt64()
		if !ok {
			return value.Value{}, bits.Buffer{}, fmt.Errorf("%w: %q", schema.ErrLengthTargetIsInvalid, ft.By)
		}
		inner, ok := ft.EnumMap.Get(key)
		if !ok {
			return value.Value{}, bits.Buffer{}, fmt.Errorf("%w: %d", schema.ErrEnumKeyNotFound, key)
		}
		effective = inner
	}

	if effective.Kind == schema.KindArray && effective.Length != nil && effective.Length.Kind == schema.LengthBy {
		n, err := lengthFromField(effective.Length.By, lookup)
		if err != nil {
			return value.Value{}, bits.Buffer{}, err
		}
		cp := *effective
		fixed := schema.FixedLength(n)
		cp.Length = &fixed
		effective = &cp
	}

	if outerSize != nil {
		region, rest, err := resolveAndSplit(outerSize, cur, lookup)
		if err != nil {
			return value.Value{}, bits.Buffer{}, err
		}
		cp := *effective
		all := schema.BytesSizeAll
		cp.Size = &all
		v, _, err := readType(&cp, region, depth+1, opts)
		if err != nil {
			return value.Value{}, bits.Buffer{}, err
		}
		return v, rest, nil
	}

	return readType(effective, cur, depth+1, opts)
}

func lengthFromField(name string, lookup sizing.FieldLookup) (int, error) {
	v, ok := lookup(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", schema.ErrByKeyNotFound, name)
	}
	n, ok := v.AsUint64()
	if !ok {
		return 0, fmt.Errorf("%w: %q", schema.ErrLengthTargetIsInvalid, name)
	}
	return int(n), nil
}

// sliceRegion returns the byte-aligned bits [startBit, endBit) of region,
// used by Checksum/Sign to recover the span their start_key/end_key name.
func sliceRegion(region bits.Buffer, startBit, endBit int) ([]byte, error) {
	head, _, err := region.SplitAt(endBit)
	if err != nil {
		return nil, schema.ErrIncomplete
	}
	_, tail, err := head.SplitAt(startBit)
	if err != nil {
		return nil, schema.ErrIncomplete
	}
	return tail.AsBytes()
}

func readChecksumField(ft *schema.Type, region bits.Buffer, offset int, keyPos map[string]int, cur bits.Buffer) (value.Value, int, error) {
	startBit, ok := keyPos[ft.StartKey]
	if !ok {
		return value.Value{}, 0, fmt.Errorf("%w: %q", schema.ErrByKeyNotFound, ft.StartKey)
	}
	endBit := offset
	if ft.EndKey != "" {
		eb, ok := keyPos[ft.EndKey]
		if !ok {
			return value.Value{}, 0, fmt.Errorf("%w: %q", schema.ErrByKeyNotFound, ft.EndKey)
		}
		endBit = eb
	}

	data, err := sliceRegion(region, startBit, endBit)
	if err != nil {
		return value.Value{}, 0, err
	}

	head, _, err := cur.SplitAt(8)
	if err != nil {
		return value.Value{}, 0, schema.ErrIncomplete
	}
	want, err := head.AsBytes()
	if err != nil {
		return value.Value{}, 0, err
	}

	ok2, err := ft.Method.Check(data, want[0])
	if err != nil {
		return value.Value{}, 0, fmt.Errorf("%w: %v", schema.ErrChecksumError, err)
	}
	if !ok2 {
		return value.Value{}, 0, schema.ErrChecksumError
	}
	return value.NewBytes(want), 8, nil
}

func readSignField(ft *schema.Type, region bits.Buffer, offset int, keyPos map[string]int, cur bits.Buffer, lookup sizing.FieldLookup) (value.Value, int, error) {
	startBit, ok := keyPos[ft.StartKey]
	if !ok {
		return value.Value{}, 0, fmt.Errorf("%w: %q", schema.ErrByKeyNotFound, ft.StartKey)
	}
	endBit := offset
	if ft.EndKey != "" {
		eb, ok := keyPos[ft.EndKey]
		if !ok {
			return value.Value{}, 0, fmt.Errorf("%w: %q", schema.ErrByKeyNotFound, ft.EndKey)
		}
		endBit = eb
	}

	data, err := sliceRegion(region, startBit, endBit)
	if err != nil {
		return value.Value{}, 0, err
	}

	sigRegion, _, err := resolveAndSplit(ft.Size, cur, lookup)
	if err != nil {
		return value.Value{}, 0, err
	}
	sig, err := sigRegion.AsBytes()
	if err != nil {
		return value.Value{}, 0, err
	}

	ok2, err := ft.OnReadKey.Verify(data, sig)
	if err != nil {
		return value.Value{}, 0, fmt.Errorf("%w: %v", schema.ErrVerifyError, err)
	}
	if !ok2 {
		return value.Value{}, 0, schema.ErrVerifyError
	}
	return value.NewBytes(sig), sigRegion.Len(), nil
}

// validateSizeExact checks an already-encoded region against a non-deferred
// BytesSize (Fixed exact match, EndWith suffix match). Grounded on
// original_source/src/ty/utils.rs::check_size.
func validateSizeExact(size *schema.BytesSize, region bits.Buffer) error {
	switch size.Kind {
	case schema.SizeAll:
		return nil
	case schema.SizeFixed:
		if region.Len() != size.Fixed*8 {
			return fmt.Errorf("%w: expected %d bytes, got %d", schema.ErrBytesSizeError, size.Fixed, region.Len()/8)
		}
		return nil
	case schema.SizeEndWith:
		b, err := region.AsBytes()
		if err != nil {
			return err
		}
		if !bytes.HasSuffix(b, size.EndWith) {
			return fmt.Errorf("%w: does not end with sentinel", schema.ErrBytesSizeError)
		}
		return nil
	default:
		return nil
	}
}

// applyOuterSize validates or rejects a Struct/Array/Encrypt field's own
// declared size after encoding, for the bare (not-struct-field) write path.
// By/Enum sizes can only be satisfied by an enclosing struct's back-patcher.
func applyOuterSize(ty *schema.Type, region bits.Buffer) (bits.Buffer, error) {
	if ty.Size == nil {
		return region, nil
	}
	if ty.Size.Kind == schema.SizeBy || ty.Size.Kind == schema.SizeEnum {
		return bits.Buffer{}, fmt.Errorf("%w: %s size by/enum reference used outside a struct", schema.ErrByError, ty.Kind)
	}
	if err := validateSizeExact(ty.Size, region); err != nil {
		return bits.Buffer{}, err
	}
	return region, nil
}

// writeStruct implements the two-pass back-patching writer: an
// initially-empty working table is filled pass by pass,
// letting later fields' encoded lengths patch earlier reference fields.
func writeStruct(ty *schema.Type, v value.Value, depth int, opts Options) (bits.Buffer, error) {
	if opts.Limits.MaxDepth > 0 && depth > opts.Limits.MaxDepth {
		return bits.Buffer{}, ErrMaxDepthExceeded
	}
	obj, ok := v.ObjVal()
	if !ok {
		return bits.Buffer{}, fmt.Errorf("%w: Struct", schema.ErrTypeError)
	}

	ws := getWriteState()
	defer putWriteState(ws)
	for _, f := range ty.Fields {
		ws.order = append(ws.order, f.Name)
		ws.slots[f.Name] = &writeSlot{ty: f.Type}
	}

	for pass := 0; pass < 2; pass++ {
		for _, name := range ws.order {
			slot := ws.slots[name]
			if slot.have {
				continue
			}
			fv, fvOK := obj.Get(name)
			region, err := writeStructField(ws, name, slot.ty, fv, fvOK, obj, depth, opts)
			if err != nil {
				if errors.Is(err, errDeferred) {
					continue
				}
				return bits.Buffer{}, withWriteField(err, name)
			}
			slot.region = region
			slot.have = true
		}
	}

	w := bits.NewBuilder(8 * len(ws.order))
	for _, name := range ws.order {
		slot := ws.slots[name]
		if !slot.have {
			return bits.Buffer{}, fmt.Errorf("%w: %s", schema.ErrMissField, name)
		}
		w.AppendBuffer(slot.region)
	}
	return w.Buffer(), nil
}

// writeStructField dispatches one field's encoding. Checksum/Sign fields
// never come from obj (they're computed from sibling regions), so fvOK is
// irrelevant to them; an Enum or normal field absent from obj is deferred
// instead of encoded from a zero Value, so a later field's back-patch
// (installByRef/installNumeric) still has a chance to supply it.
func writeStructField(ws *writeState, name string, ft *schema.Type, fv value.Value, fvOK bool, obj *value.Obj, depth int, opts Options) (bits.Buffer, error) {
	switch ft.Kind {
	case schema.KindChecksum:
		return writeChecksumField(ft, ws, name)
	case schema.KindSign:
		return writeSignField(ft, ws, name)
	case schema.KindEnum:
		if !fvOK {
			return bits.Buffer{}, errDeferred
		}
		return writeEnumField(ft, ws, fv, obj, depth, opts)
	default:
		if !fvOK {
			return bits.Buffer{}, errDeferred
		}
		return writeNormalField(ft, ws, fv, depth, opts)
	}
}

// writeNormalField elides a field's own By/Enum size or By length, encodes
// the field, and installs the computed numeric value into the referenced
// sibling slot.
func writeNormalField(ft *schema.Type, ws *writeState, fv value.Value, depth int, opts Options) (bits.Buffer, error) {
	cp := *ft
	origSize := ft.Size
	deferSize := origSize != nil && (origSize.Kind == schema.SizeBy || origSize.Kind == schema.SizeEnum)
	if deferSize {
		all := schema.BytesSizeAll
		cp.Size = &all
	}

	var lengthRef *schema.Length
	if cp.Kind == schema.KindArray && cp.Length != nil && cp.Length.Kind == schema.LengthBy {
		lengthRef = cp.Length
		cp.Length = nil
	}

	region, err := writeType(&cp, fv, depth+1, opts)
	if err != nil {
		return bits.Buffer{}, err
	}

	if deferSize {
		if err := installByRef(ws, origSize, region.Len()/8, region.Len()%8 != 0, depth, opts); err != nil {
			return bits.Buffer{}, err
		}
	} else if origSize != nil {
		if err := validateSizeExact(origSize, region); err != nil {
			return bits.Buffer{}, err
		}
	}

	if lengthRef != nil {
		items, _ := fv.Items()
		if err := installNumeric(ws, lengthRef.By, uint64(len(items)), depth, opts); err != nil {
			return bits.Buffer{}, err
		}
	}

	return region, nil
}

func writeEnumField(ft *schema.Type, ws *writeState, fv value.Value, obj *value.Obj, depth int, opts Options) (bits.Buffer, error) {
	keyVal, ok := obj.Get(ft.By)
	if !ok {
		return bits.Buffer{}, fmt.Errorf("%w: %q", schema.ErrByKeyNotFound, ft.By)
	}
	key, ok := keyVal.AsInt64()
	if !ok {
		return bits.Buffer{}, fmt.Errorf("%w: %q", schema.ErrLengthTargetIsInvalid, ft.By)
	}
	inner, ok := ft.EnumMap.Get(key)
	if !ok {
		return bits.Buffer{}, fmt.Errorf("%w: %d", schema.ErrEnumKeyNotFound, key)
	}

	region, err := writeType(inner, fv, depth+1, opts)
	if err != nil {
		return bits.Buffer{}, err
	}

	if ft.Size != nil {
		switch ft.Size.Kind {
		case schema.SizeBy, schema.SizeEnum:
			if err := installByRef(ws, ft.Size, region.Len()/8, region.Len()%8 != 0, depth, opts); err != nil {
				return bits.Buffer{}, err
			}
		default:
			if err := validateSizeExact(ft.Size, region); err != nil {
				return bits.Buffer{}, err
			}
		}
	}
	return region, nil
}

func writeChecksumField(ft *schema.Type, ws *writeState, selfName string) (bits.Buffer, error) {
	end := ft.EndKey
	if end == "" {
		end = selfName
	}
	data, ready, err := concatRegion(ws, ft.StartKey, end)
	if err != nil {
		return bits.Buffer{}, err
	}
	if !ready {
		return bits.Buffer{}, errDeferred
	}
	sum, err := ft.Method.Compute(data)
	if err != nil {
		return bits.Buffer{}, fmt.Errorf("%w: %v", schema.ErrChecksumError, err)
	}
	w := bits.NewBuilder(1)
	w.AppendBytes([]byte{sum})
	return w.Buffer(), nil
}

func writeSignField(ft *schema.Type, ws *writeState, selfName string) (bits.Buffer, error) {
	end := ft.EndKey
	if end == "" {
		end = selfName
	}
	data, ready, err := concatRegion(ws, ft.StartKey, end)
	if err != nil {
		return bits.Buffer{}, err
	}
	if !ready {
		return bits.Buffer{}, errDeferred
	}
	sig, err := ft.OnWriteKey.Sign(data)
	if err != nil {
		return bits.Buffer{}, fmt.Errorf("%w: %v", schema.ErrSignError, err)
	}
	w := bits.NewBuilder(len(sig))
	w.AppendBytes(sig)
	region := w.Buffer()

	if ft.Size != nil {
		switch ft.Size.Kind {
		case schema.SizeBy, schema.SizeEnum:
			if err := installByRef(ws, ft.Size, len(sig), false, 0, DefaultOptions); err != nil {
				return bits.Buffer{}, err
			}
		default:
			if err := validateSizeExact(ft.Size, region); err != nil {
				return bits.Buffer{}, err
			}
		}
	}
	return region, nil
}

// concatRegion concatenates the encoded bytes of every slot in
// [startKey, endKey) in declaration order. ready is false (no error) when a
// slot in that span hasn't been encoded yet, signaling the caller to defer
// to the next pass.
func concatRegion(ws *writeState, startKey, endKey string) (data []byte, ready bool, err error) {
	startIdx, endIdx := -1, -1
	for i, name := range ws.order {
		if name == startKey {
			startIdx = i
		}
		if name == endKey {
			endIdx = i
		}
	}
	if startIdx < 0 {
		return nil, false, fmt.Errorf("%w: %q", schema.ErrByKeyNotFound, startKey)
	}
	if endIdx < 0 {
		endIdx = len(ws.order)
	}
	if endIdx < startIdx {
		return nil, false, fmt.Errorf("%w: end_key precedes start_key", schema.ErrByKeyNotFound)
	}

	var buf bytes.Buffer
	for i := startIdx; i < endIdx; i++ {
		slot := ws.slots[ws.order[i]]
		if !slot.have {
			return nil, false, nil
		}
		b, err := slot.region.AsBytes()
		if err != nil {
			return nil, false, fmt.Errorf("%w: field %q is not byte-aligned", schema.ErrChecksumError, ws.order[i])
		}
		buf.Write(b)
	}
	return buf.Bytes(), true, nil
}

// installByRef installs the numeric length/key a By or Enum BytesSize
// reference demands into its target slot. nBytes is the
// just-encoded field's byte length; notByteAligned rejects a sub-byte
// result since lengths can only be measured in whole bytes.
func installByRef(ws *writeState, ref *schema.BytesSize, nBytes int, notByteAligned bool, depth int, opts Options) error {
	if notByteAligned {
		return fmt.Errorf("%w: encoded field is not a whole number of bytes", schema.ErrBytesSizeError)
	}
	switch ref.Kind {
	case schema.SizeBy:
		return installNumeric(ws, ref.By, uint64(nBytes), depth, opts)
	case schema.SizeEnum:
		kr, ok := ref.EnumMap.FindKey(nBytes, func(a, b int) bool { return a == b })
		if !ok {
			return fmt.Errorf("%w: no enum key maps to size %d", schema.ErrEnumError, nBytes)
		}
		key, ok := kr.Int64()
		if !ok {
			return fmt.Errorf("%w: enum size match is a range, not an exact value", schema.ErrEnumError)
		}
		return installNumeric(ws, ref.EnumBy, uint64(key), depth, opts)
	default:
		return nil
	}
}

// installNumeric writes n through the target field's own type and installs
// the result into its slot, overwriting any value present in the input.
func installNumeric(ws *writeState, name string, n uint64, depth int, opts Options) error {
	slot, ok := ws.slots[name]
	if !ok {
		return fmt.Errorf("%w: %q", schema.ErrByKeyNotFound, name)
	}
	region, err := writeType(slot.ty, value.NewUint(n), depth+1, opts)
	if err != nil {
		return err
	}
	slot.region = region
	slot.have = true
	return nil
}
