package command

import (
	"testing"

	"github.com/metal-toolbox/xapictl/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		testName     string
		input        string
		expectedName string
		expectedArgs model.Arguments
	}{
		{
			"command without arguments",
			"SystemUnit.Boot",
			"SystemUnit.Boot",
			nil,
		},
		{
			"surrounding whitespace is ignored",
			"  Standby.Deactivate \n",
			"Standby.Deactivate",
			nil,
		},
		{
			"JSON object arguments",
			`Audio.Volume.Set {"Level": 50}`,
			"Audio.Volume.Set",
			model.Arguments{"Level": model.Int(50)},
		},
		{
			"JSON object split on the first whitespace run",
			"Audio.Volume.Set \t  {\"Level\": 50, \"Mute\": false}",
			"Audio.Volume.Set",
			model.Arguments{"Level": model.Int(50), "Mute": model.Bool(false)},
		},
		{
			"JSON nested values",
			`UserInterface.Message.Alert.Display {"Title": "Notice", "Duration": 10, "Options": {"Ratio": 0.5}}`,
			"UserInterface.Message.Alert.Display",
			model.Arguments{
				"Title":    model.String("Notice"),
				"Duration": model.Int(10),
				"Options":  model.Object(model.Arguments{"Ratio": model.Float(0.5)}),
			},
		},
		{
			"empty JSON object",
			`SystemUnit.Boot {}`,
			"SystemUnit.Boot",
			nil,
		},
		{
			"key:value integer",
			"Audio.Volume.Set Level:50",
			"Audio.Volume.Set",
			model.Arguments{"Level": model.Int(50)},
		},
		{
			"key:value boolean",
			"Foo.Bar flag:true",
			"Foo.Bar",
			model.Arguments{"flag": model.Bool(true)},
		},
		{
			"key:value boolean is case insensitive",
			"Foo.Bar flag:FALSE",
			"Foo.Bar",
			model.Arguments{"flag": model.Bool(false)},
		},
		{
			"key:value mixed types",
			"Video.Input.SetMainVideoSource ConnectorId:2 Gain:1.5 Layout:Equal Mute:True",
			"Video.Input.SetMainVideoSource",
			model.Arguments{
				"ConnectorId": model.Int(2),
				"Gain":        model.Float(1.5),
				"Layout":      model.String("Equal"),
				"Mute":        model.Bool(true),
			},
		},
		{
			"key:value splits on the first colon only",
			"Dial Number:sip:room@example.com",
			"Dial",
			model.Arguments{"Number": model.String("sip:room@example.com")},
		},
		{
			"key:value non finite float stays a string",
			"Foo.Bar Value:inf",
			"Foo.Bar",
			model.Arguments{"Value": model.String("inf")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.testName, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)

			assert.Equal(t, tt.expectedName, got.Name)

			if tt.expectedArgs == nil {
				assert.Empty(t, got.Arguments)
				return
			}

			assert.True(
				t,
				model.Object(tt.expectedArgs).Equal(model.Object(got.Arguments)),
				"expected %s, got %s", model.Object(tt.expectedArgs), model.Object(got.Arguments),
			)
		})
	}
}

func TestParseIntegerKind(t *testing.T) {
	got, err := Parse("Audio.Volume.Set Level:50")
	require.NoError(t, err)

	level, ok := got.Arguments["Level"].AsInt()
	assert.True(t, ok, "expected Level to be an integer, got %s", got.Arguments["Level"].Kind())
	assert.Equal(t, int64(50), level)

	flag, err := Parse("Foo.Bar flag:true")
	require.NoError(t, err)

	b, ok := flag.Arguments["flag"].AsBool()
	assert.True(t, ok)
	assert.True(t, b)
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		value    string
		expected model.Value
	}{
		{"50", model.Int(50)},
		{"-7", model.Int(-7)},
		{"1_000", model.Int(1000)},
		{"1_000_000", model.Int(1000000)},
		{"1.5", model.Float(1.5)},
		{"1_000.5", model.Float(1000.5)},
		{"1e3", model.Float(1000)},
		{"1__0", model.String("1__0")},
		{"_1", model.String("_1")},
		{"1_", model.String("1_")},
		{"1_.5", model.String("1_.5")},
		{"0x10", model.String("0x10")},
		{"0x1p4", model.String("0x1p4")},
		{"0X1P4", model.String("0X1P4")},
		{"NaN", model.String("NaN")},
		{"True", model.Bool(true)},
		{"Equal", model.String("Equal")},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got := coerce(tt.value)

			assert.Equal(t, tt.expected.Kind(), got.Kind(), "kind of %q", tt.value)
			assert.True(t, tt.expected.Equal(got), "expected %s, got %s", tt.expected, got)
		})
	}
}

func TestParseDigitSeparators(t *testing.T) {
	got, err := Parse("Foo.Bar v:1_000 w:0x1p4")
	require.NoError(t, err)

	assert.Equal(t, `{"v":1000,"w":"0x1p4"}`, got.ArgumentsJSON())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		testName      string
		input         string
		expectedError error
	}{
		{"empty string", "", ErrEmptyCommand},
		{"whitespace only", "   ", ErrEmptyCommand},
		{"invalid JSON", `Audio.Volume.Set {"Level": }`, ErrArguments},
		{"JSON with trailing data", `Audio.Volume.Set {"Level": 50} extra`, ErrArguments},
		{"neither JSON nor key:value", "Audio.Volume.Set fifty", ErrArguments},
		{"key:value with empty key", "Audio.Volume.Set :50", ErrArguments},
		{"key:value with empty value", "Audio.Volume.Set Level:", ErrArguments},
		{"one bad token among pairs", "Audio.Volume.Set Level:50 loud", ErrArguments},
	}

	for _, tt := range tests {
		t.Run(tt.testName, func(t *testing.T) {
			_, err := Parse(tt.input)
			assert.ErrorIs(t, err, tt.expectedError)
		})
	}
}

func TestArgumentsError(t *testing.T) {
	_, err := Parse("Audio.Volume.Set fifty")

	var argErr *ArgumentsError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "fifty", argErr.Raw)
	assert.Contains(t, err.Error(), `"fifty"`)
}
