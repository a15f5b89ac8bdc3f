package di

import (
	"reflect"
	"testing"
)

func TestCreateConfigFromFlags(t *testing.T) {
	cfg := createConfigFromFlags(&CLIFlags{
		Bucket:     "archive",
		Region:     "eu-west-1",
		PathStyle:  true,
		PublicURL:  "https://cdn.example.com",
		Processors: " exiftool , ,exiftran",
		NoNotify:   true,
		Verbose:    true,
	})

	s3Cfg := cfg.GetS3()
	if s3Cfg.BucketName != "archive" || s3Cfg.Region != "eu-west-1" || !s3Cfg.UsePathStyle {
		t.Errorf("unexpected s3 config: %+v", s3Cfg)
	}
	if s3Cfg.PublicURL != "https://cdn.example.com" {
		t.Errorf("public url: got %q", s3Cfg.PublicURL)
	}
	if got := cfg.GetPostProcess().Processors; !reflect.DeepEqual(got, []string{"exiftool", "exiftran"}) {
		t.Errorf("processors: got %v", got)
	}
	if cfg.GetNotify().Enabled {
		t.Error("notifications should be disabled")
	}
	if cfg.GetLedger().Enabled {
		t.Error("the CLI should not keep a ledger")
	}
	if !cfg.GetBool("cli.verbose") {
		t.Error("cli settings not applied")
	}
}

func TestBuildContainersRegisterProviders(t *testing.T) {
	if _, err := BuildContainer(""); err != nil {
		t.Fatalf("BuildContainer: %v", err)
	}
	if _, err := BuildCLIContainer(&CLIFlags{}); err != nil {
		t.Fatalf("BuildCLIContainer: %v", err)
	}
}
