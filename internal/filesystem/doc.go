/*
Package filesystem manages the scratch space conversions run in.

# Workspaces

Every conversion request gets its own directory, TEMP_DIR/<uuid>, so two
requests uploading files with the same name never touch each other's input
or output:

	mgr := filesystem.NewManager(cfg.TempDir, cfg.KeepWorkFiles)

	ws, err := mgr.Create()
	if err != nil {
	    return err
	}
	defer mgr.Release(ws)

	input, n, err := ws.SaveUpload(header.Filename, file, maxBytes)
	output, err := ws.OutputPath(input, "mp4")

Release removes the directory on every exit path unless KEEP_WORK_FILES is
set. Directories left behind by a crash are removed at startup by
[Manager.PurgeStale]; only entries whose names parse as UUIDs are touched.

Client-supplied filenames are reduced to their base name by [SafeBaseName]
before they reach the disk.

# Retries

Removing and reading files goes through [RemoveAllWithRetry] and
[ReadFileWithRetry], which retry ESTALE, EBUSY and ENOTEMPTY with exponential
backoff. These show up when TEMP_DIR is on NFS or when a killed FFmpeg has
not yet released its output file.

	config := filesystem.RetryConfig{
	    MaxRetries:     5,
	    InitialBackoff: 100 * time.Millisecond,
	    MaxBackoff:     1 * time.Second,
	}
	data, err := filesystem.ReadFileWithRetry(path, config)

Any other error is returned immediately.
*/
package filesystem
