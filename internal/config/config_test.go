package config

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoadAppliesDefaultsWithNoFile(t *testing.T) {
	Convey("Given no config file path", t, func() {
		Convey("Load returns the built-in defaults", func() {
			cfg, err := Load("")
			So(err, ShouldBeNil)
			So(cfg.ListenAddr, ShouldEqual, ":8080")
			So(cfg.PlayerCount, ShouldEqual, 2)
		})
	})
}

func TestLoadOverlaysYAMLFile(t *testing.T) {
	Convey("Given a YAML file overriding listen_addr and player_count", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		content := "listen_addr: \":9090\"\nplayer_count: 4\n"
		err := os.WriteFile(path, []byte(content), 0o644)
		So(err, ShouldBeNil)

		Convey("Load reflects the file's values and keeps other defaults", func() {
			cfg, err := Load(path)
			So(err, ShouldBeNil)
			So(cfg.ListenAddr, ShouldEqual, ":9090")
			So(cfg.PlayerCount, ShouldEqual, 4)
			So(cfg.LogLevel, ShouldEqual, "info")
		})
	})
}

func TestLoadRejectsInvalidPlayerCount(t *testing.T) {
	Convey("Given a YAML file with an out-of-range player_count", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		err := os.WriteFile(path, []byte("player_count: 99\n"), 0o644)
		So(err, ShouldBeNil)

		Convey("Load fails validation", func() {
			_, err := Load(path)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestEnvironmentOverridesFileAndDefaults(t *testing.T) {
	Convey("Given BWSIM_LOG_LEVEL set in the environment", t, func() {
		os.Setenv("BWSIM_LOG_LEVEL", "debug")
		defer os.Unsetenv("BWSIM_LOG_LEVEL")

		Convey("Load picks up the environment override", func() {
			cfg, err := Load("")
			So(err, ShouldBeNil)
			So(cfg.LogLevel, ShouldEqual, "debug")
		})
	})
}
