package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCreateGoScript(t *testing.T) {
	dir := t.TempDir()
	path, err := create("EnemyChaser", dir, false)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if filepath.Base(path) != "enemy_chaser.go" {
		t.Errorf("Expected enemy_chaser.go, got %s", filepath.Base(path))
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"type EnemyChaser struct {",
		"engine.BaseScript",
		"func (e *EnemyChaser) Defaults() {",
		"func (e *EnemyChaser) OnUpdate(deltaTime float32) {",
	} {
		if !strings.Contains(string(b), want) {
			t.Errorf("script missing %q:\n%s", want, b)
		}
	}
}

func TestCreateLuaScript(t *testing.T) {
	dir := t.TempDir()
	path, err := create("Door", dir, true)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	b, _ := os.ReadFile(path)
	if filepath.Ext(path) != ".lua" || !strings.Contains(string(b), `name = "Door"`) {
		t.Errorf("unexpected Lua script %s:\n%s", path, b)
	}
}

func TestCreateRejects(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"", "lower", "Has Space", "Dash-Name"} {
		if _, err := create(name, dir, false); err == nil {
			t.Errorf("Expected an error for %q", name)
		}
	}

	if _, err := create("Twice", dir, false); err != nil {
		t.Fatal(err)
	}
	if _, err := create("Twice", dir, false); err == nil {
		t.Error("Expected an error when the file already exists")
	}
}
