package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/amezav/filedrop/internal/delivery"
	"github.com/amezav/filedrop/internal/engine"
	"github.com/amezav/filedrop/internal/models"
	"github.com/amezav/filedrop/internal/preview"
	"github.com/amezav/filedrop/internal/session"
)

type ConversionsConfig struct {
	DirInboxRoot     string
	DirDownloadsRoot string
}

// ConversionsService stages requested files into a session and runs
// the conversion engine over them, delivering outputs as downloads.
type ConversionsService struct {
	config    ConversionsConfig
	previews  preview.Generator
	converter *engine.Engine
	sink      *delivery.DirSink
}

func NewConversionsService(
	config ConversionsConfig,
	previews preview.Generator,
	converter *engine.Engine,
) (*ConversionsService, error) {
	sink, err := delivery.NewDirSink(config.DirDownloadsRoot)
	if err != nil {
		return nil, err
	}

	return &ConversionsService{
		config:    config,
		previews:  previews,
		converter: converter,
		sink:      sink,
	}, nil
}

// ProcessConvertRequest handles one batch: stage every listed file,
// apply the request config and convert sequentially in list order.
func (s *ConversionsService) ProcessConvertRequest(
	ctx context.Context,
	req models.BatchConvertRequest,
) error {
	slog.Debug(
		"Processing batch conversion request",
		"requestId", req.RequestID,
		"files", len(req.FilePaths),
		"targetFormat", req.Config.TargetFormat,
	)

	inputs, err := s.stageInputs(req.FilePaths)
	if err != nil {
		return err
	}

	sess := session.New(s.previews)
	sess.AddFiles(ctx, inputs)
	sess.SetConfig(req.Config)

	return s.converter.ConvertAll(ctx, sess.Files(), sess.Config(), s.sink)
}

// ProcessPurgeRequest deletes previously delivered downloads.
func (s *ConversionsService) ProcessPurgeRequest(
	ctx context.Context,
	req models.PurgeRequest,
) error {
	slog.Debug(
		"Processing downloads purge request",
		"requestId", req.RequestID,
		"files", len(req.Filenames),
	)

	for _, filename := range req.Filenames {
		select {
		case <-ctx.Done():
			slog.Warn(
				"Context cancelled during downloads purge",
				"file", filename,
			)
			return ctx.Err()
		default:
			// Continue with deletion
		}

		if err := s.sink.Remove(filename); err != nil {
			return err
		}
	}

	return nil
}

func (s *ConversionsService) stageInputs(
	relPaths []string,
) ([]session.Input, error) {
	inputs := make([]session.Input, 0, len(relPaths))
	for _, relPath := range relPaths {
		absPath := filepath.Join(s.config.DirInboxRoot, relPath)

		data, err := os.ReadFile(absPath)
		if err != nil {
			return nil, fmt.Errorf(
				"failed to read input file %s: %w",
				absPath,
				err,
			)
		}

		inputs = append(inputs, session.Input{
			Name: filepath.Base(relPath),
			Data: data,
		})
	}

	return inputs, nil
}
