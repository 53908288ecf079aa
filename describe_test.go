package pdef

import (
	"encoding/json"
	"net/http"
	"reflect"
	"testing"

	"github.com/pdef/pdef-go/internal/testfixtures"
	"github.com/pdef/pdef-go/testutil"
)

func TestDescribe_Interfaces(t *testing.T) {
	schema := testfixtures.New()
	m := Describe(schema.RootInterface, DescribeOptions{})

	if m.Root != "RootInterface" {
		t.Errorf("expected root RootInterface, got %s", m.Root)
	}
	if len(m.Interfaces) != 2 || m.Interfaces[0].Name != "RootInterface" || m.Interfaces[1].Name != "SubInterface" {
		t.Fatalf("unexpected interfaces %+v", m.Interfaces)
	}
	if m.Messages != nil || m.Enums != nil {
		t.Error("expected no types without the types option")
	}

	want := MethodInfo{
		Name:   "interface0",
		Args:   []ArgInfo{{"bool0", "bool"}, {"int0", "int32"}, {"string0", "string"}},
		Result: "SubInterface",
	}
	if got := m.Interfaces[0].Methods[0]; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %+v, got %+v", want, got)
	}
	if got := m.Interfaces[1].Methods[0]; !got.Remote || got.Result != "string" {
		t.Errorf("expected remote get returning string, got %+v", got)
	}
}

func TestDescribe_Types(t *testing.T) {
	schema := testfixtures.New()
	m := Describe(schema.TestInterface, DescribeOptions{Types: true})

	var messages []string
	for _, msg := range m.Messages {
		messages = append(messages, msg.Name)
	}
	wantMessages := []string{"Base", "MultiLevelSubtype", "Subtype", "Subtype2", "TestException", "TestForm", "TestMessage"}
	if !reflect.DeepEqual(messages, wantMessages) {
		t.Errorf("expected messages %v, got %v", wantMessages, messages)
	}

	base := m.Messages[0]
	if base.Discriminator != "type" {
		t.Errorf("expected discriminator type, got %q", base.Discriminator)
	}
	if want := []string{"MultiLevelSubtype", "Subtype", "Subtype2"}; !reflect.DeepEqual(base.Subtypes, want) {
		t.Errorf("expected subtypes %v, got %v", want, base.Subtypes)
	}
	if mls := m.Messages[1]; mls.Base != "Subtype" || len(mls.Fields) != 1 || mls.Fields[0].Name != "mfield" {
		t.Errorf("unexpected MultiLevelSubtype %+v", mls)
	}
	if exc := m.Messages[4]; !exc.Exception {
		t.Errorf("expected TestException to be an exception, got %+v", exc)
	}
	if form := m.Messages[5]; !form.Form {
		t.Errorf("expected TestForm to be a form, got %+v", form)
	}

	wantEnums := []EnumInfo{
		{Name: "PolymorphicType", Values: []string{"base", "subtype", "subtype2", "multilevel_subtype"}},
		{Name: "TestEnum", Values: []string{"one", "two", "three"}},
	}
	if !reflect.DeepEqual(m.Enums, wantEnums) {
		t.Errorf("expected enums %+v, got %+v", wantEnums, m.Enums)
	}

	if got := m.Interfaces[0]; got.Name != "TestInterface" || got.Exc != "TestException" {
		t.Errorf("unexpected interface %+v", got)
	}
}

func TestDescribeHandler(t *testing.T) {
	schema := testfixtures.New()
	h := DescribeHandler(schema.RootInterface)

	w := testutil.NewRequest().
		GET("/describe").
		WithQuery("interface", "SubInterface").
		WithQuery("types", "true").
		Serve(h)
	testutil.AssertStatus(t, w, http.StatusOK)

	var m Manifest
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("failed to decode manifest: %v", err)
	}
	if len(m.Interfaces) != 1 || m.Interfaces[0].Name != "SubInterface" {
		t.Errorf("expected only SubInterface, got %+v", m.Interfaces)
	}

	w = testutil.NewRequest().
		GET("/describe").
		WithQuery("types", "maybe").
		Serve(h)
	testutil.AssertTextError(t, w, http.StatusBadRequest, "Malformed describe options")
}
