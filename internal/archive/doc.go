// Package archive uploads converted files to S3-compatible object storage.
//
// Archiving is optional and disabled unless ARCHIVE_S3_BUCKET is set. Uploads
// run after the response has been written, so a slow or failing bucket never
// delays or fails a conversion; failures are logged and counted in
// media_converter_archive_uploads_total.
//
//	a, err := archive.NewS3(archive.Config{
//	    Bucket:    "converted",
//	    Region:    "us-east-1",
//	    Prefix:    "media",
//	    Endpoint:  "http://minio:9000", // optional
//	    AccessKey: key,
//	    SecretKey: secret,
//	})
//	err = a.Archive(ctx, archive.ObjectKey(time.Now(), id, "clip.mp4"), body, "video/mp4")
package archive
