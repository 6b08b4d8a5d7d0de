// Copyright 2026 The streamdiff Authors.
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

package diffcore

import (
	"io"

	stderrors "errors"

	"github.com/btrfs-tools/streamdiff/internal/diag"
	"github.com/btrfs-tools/streamdiff/internal/logger"
	"github.com/btrfs-tools/streamdiff/internal/stream"
	"github.com/btrfs-tools/streamdiff/internal/tracker"
	"github.com/btrfs-tools/streamdiff/internal/wire"
)

// Result is everything one Parse call produces.
type Result struct {
	Changes     []FileChange
	Diagnostics []diag.Diagnostic
	Version     uint32
}

// Parse decodes a send stream from r, replays it through the Path/Inode
// Tracker and Change Aggregator, runs the Phantom Filter, and returns the
// canonical FileChange set between OLD and NEW. It is the Core API's
// single entry point.
func Parse(r io.Reader, oracles Oracles, opts Options) (*Result, error) {
	log := opts.log()

	dec, err := wire.NewDecoder(r, wire.Options{
		VerifyCRC:         opts.VerifyCRC,
		SupportedVersions: opts.SupportedVersions,
		Cancel:            opts.Cancel,
	})
	if err != nil {
		return nil, wrapErr(classifyWireErr(err), err)
	}
	log.Debugf("negotiated stream version %d", dec.Version())

	t := tracker.New(opts.Strict)
	var facadeDiags []diag.Diagnostic

	for {
		rec, err := dec.Next()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if stderrors.Is(err, wire.ErrCancelled) {
				return nil, wrapErr(ErrKindCancelled, err)
			}
			return nil, wrapErr(classifyWireErr(err), err)
		}

		if !opts.Strict && !rec.Kind.Known() {
			facadeDiags = append(facadeDiags, diag.Diagnostic{
				Kind:    diag.KindUnknownCommand,
				Message: "unrecognized command kind " + rec.Kind.Name(),
				Offset:  rec.Offset,
			})
		}

		if err := applyCommand(t, rec, opts.Strict, log); err != nil {
			return nil, wrapErr(ErrKindTrackerInvariant, err)
		}
	}

	resolveKind := func(path string) tracker.Kind {
		if k, ok := oracles.newKind(path); ok {
			return k
		}
		return tracker.KindUnknown
	}

	changes := aggregate(t, opts.EmitMetadataOnlyChanges, resolveKind)
	changes, phantomDiags := phantomFilter(changes, oracles)

	diagnostics := append(t.Diagnostics(), facadeDiags...)
	diagnostics = append(diagnostics, phantomDiags...)
	for _, d := range diagnostics {
		log.Debugf("%s: %s (path=%q)", d.Kind, d.Message, d.Path)
	}

	return &Result{
		Changes:     changes,
		Diagnostics: diagnostics,
		Version:     dec.Version(),
	}, nil
}

func classifyWireErr(err error) ErrorKind {
	switch err.(type) {
	case *wire.MalformedStreamError, *wire.TruncatedStreamError:
		return ErrKindMalformedStream
	case *wire.UnsupportedVersionError:
		return ErrKindUnsupportedVersion
	case *wire.CorruptCommandError:
		return ErrKindCorruptCommand
	default:
		return ErrKindUnknown
	}
}

// applyCommand replays one decoded command against the tracker. It
// returns an error only in strict mode, or when the tracker itself
// escalates an invariant violation to a hard error.
func applyCommand(t *tracker.Tracker, rec *wire.CommandRecord, strict bool, log logger.Logger) error {
	effect := stream.Classify(rec.Kind)

	if effect.Kind == stream.EffectNone {
		return unknownCommand(rec, strict, log)
	}

	log.Tracef("command %s at offset %d", rec.Kind.Name(), rec.Offset)

	switch effect.Kind {
	case stream.EffectSetRoot, stream.EffectEnd:
		return nil

	case stream.EffectCreate:
		path, ok := rec.Attributes.String(wire.AttrPath)
		if !ok {
			return missingAttr(rec, "path", strict, log)
		}
		ino, ok := rec.Attributes.Uint64(wire.AttrIno)
		if !ok {
			return missingAttr(rec, "ino", strict, log)
		}
		if err := t.Allocate(tracker.Inode(ino), createKind(rec.Kind), path, rec.Kind, rec.Offset); err != nil {
			return err
		}
		if rec.Kind == wire.CmdSymlink {
			if target, ok := rec.Attributes.String(wire.AttrPathLink); ok {
				return t.SetSymlinkTarget(tracker.Inode(ino), []byte(target))
			}
		}
		return nil

	case stream.EffectAttach:
		path, ok := rec.Attributes.String(wire.AttrPath)
		if !ok {
			return missingAttr(rec, "path", strict, log)
		}
		source, ok := rec.Attributes.String(wire.AttrPathLink)
		if !ok {
			return missingAttr(rec, "path_link", strict, log)
		}
		id := t.Ensure(source)
		return t.Attach(id, path, rec.Kind, rec.Offset)

	case stream.EffectDetach:
		path, ok := rec.Attributes.String(wire.AttrPath)
		if !ok {
			return missingAttr(rec, "path", strict, log)
		}
		_, err := t.Detach(path, rec.Kind, rec.Offset)
		return err

	case stream.EffectRename:
		from, ok := rec.Attributes.String(wire.AttrPath)
		if !ok {
			return missingAttr(rec, "path", strict, log)
		}
		to, ok := rec.Attributes.String(wire.AttrPathTo)
		if !ok {
			return missingAttr(rec, "path_to", strict, log)
		}
		return t.Rename(from, to, rec.Kind, rec.Offset)

	case stream.EffectDirty:
		path, ok := rec.Attributes.String(wire.AttrPath)
		if !ok {
			return missingAttr(rec, "path", strict, log)
		}
		id := t.Ensure(path)
		var size *uint64
		if s, ok := rec.Attributes.Uint64(wire.AttrSize); ok {
			size = &s
		}
		return t.MarkDirty(id, rec.Kind, size, rec.Offset)

	case stream.EffectMetadataOnly:
		path, ok := rec.Attributes.String(wire.AttrPath)
		if !ok {
			return missingAttr(rec, "path", strict, log)
		}
		id := t.Ensure(path)
		return t.TouchMetadata(id, rec.Kind, rec.Offset)
	}

	return nil
}

func createKind(kind wire.CommandKind) tracker.Kind {
	switch kind {
	case wire.CmdMkdir:
		return tracker.KindDirectory
	case wire.CmdSymlink:
		return tracker.KindSymlink
	case wire.CmdMknod, wire.CmdMkfifo, wire.CmdMksock:
		return tracker.KindSpecial
	default:
		return tracker.KindRegular
	}
}

func unknownCommand(rec *wire.CommandRecord, strict bool, log logger.Logger) error {
	msg := "unrecognized command kind " + rec.Kind.Name()
	if strict {
		return &wire.MalformedStreamError{Reason: msg, Offset: rec.Offset}
	}
	log.Warnf("%s at offset %d; skipping", msg, rec.Offset)
	return nil
}

func missingAttr(rec *wire.CommandRecord, attr string, strict bool, log logger.Logger) error {
	msg := rec.Kind.Name() + " missing required attribute " + attr
	if strict {
		return &wire.MalformedStreamError{Reason: msg, Offset: rec.Offset}
	}
	log.Warnf("%s at offset %d; skipping", msg, rec.Offset)
	return nil
}
