package tabula

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for reader, writer and decode events.
var (
	SignalReaderCreated  = capitan.NewSignal("tabula.reader.created", "Reader instantiated and header row consumed")
	SignalReadComplete   = capitan.NewSignal("tabula.read.complete", "Record read and decoded")
	SignalDecodeComplete = capitan.NewSignal("tabula.decode.complete", "Record decoded into a typed value")
	SignalWriterCreated  = capitan.NewSignal("tabula.writer.created", "Writer instantiated")
	SignalHeaderWritten  = capitan.NewSignal("tabula.header.written", "Header row established and written")
	SignalWriteComplete  = capitan.NewSignal("tabula.write.complete", "Record flattened and written")
)

// Keys for typed event data.
var (
	KeyContentType = capitan.NewStringKey("content_type")
	KeyTypeName    = capitan.NewStringKey("type_name")
	KeyMode        = capitan.NewStringKey("mode")
	KeyColumns     = capitan.NewIntKey("columns")
	KeyRecord      = capitan.NewIntKey("record")
	KeySize        = capitan.NewIntKey("size")
	KeyDuration    = capitan.NewDurationKey("duration")
	KeyError       = capitan.NewErrorKey("error")
)

// emitReaderCreated emits an event when a reader has consumed its header row.
func emitReaderCreated(ctx context.Context, typeName, mode string, columns int) {
	capitan.Emit(ctx, SignalReaderCreated,
		KeyTypeName.Field(typeName),
		KeyMode.Field(mode),
		KeyColumns.Field(columns),
	)
}

// emitReadComplete emits an event when a record has been read.
func emitReadComplete(ctx context.Context, typeName string, record int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeyRecord.Field(record),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalReadComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalReadComplete, fields...)
	}
}

// emitDecodeComplete emits an event when a flat record has been bound.
func emitDecodeComplete(ctx context.Context, typeName string, size int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeySize.Field(size),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalDecodeComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalDecodeComplete, fields...)
	}
}

// emitWriterCreated emits an event when a writer is created.
func emitWriterCreated(ctx context.Context, contentType, typeName string) {
	capitan.Emit(ctx, SignalWriterCreated,
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
	)
}

// emitHeaderWritten emits an event when the header row is written.
func emitHeaderWritten(ctx context.Context, typeName string, columns int) {
	capitan.Emit(ctx, SignalHeaderWritten,
		KeyTypeName.Field(typeName),
		KeyColumns.Field(columns),
	)
}

// emitWriteComplete emits an event when a record has been written.
func emitWriteComplete(ctx context.Context, contentType, typeName string, record int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
		KeyRecord.Field(record),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalWriteComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalWriteComplete, fields...)
	}
}
