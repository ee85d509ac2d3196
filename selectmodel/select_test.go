package selectmodel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/goform/selectmodel"
)

var options = []selectmodel.Option{
	{ID: "id1", Name: "One"},
	{ID: "id2", Name: "Two", Category: "even"},
}

func TestSingle_UnknownIDIsRejected(t *testing.T) {
	m := selectmodel.New(false)
	m.SetValues(options)

	err := m.SetSelectedID("id3")
	var unknown *selectmodel.UnknownOptionError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, []string{"id3"}, unknown.IDs)
	assert.Contains(t, err.Error(), "id3")
	assert.False(t, m.HasSelectedItem())
}

func TestMultiple_UnknownIDIsRejected(t *testing.T) {
	m := selectmodel.New(true)
	m.SetValues(options)

	err := m.SetSelectedIDs([]string{"id1", "id3"})
	var unknown *selectmodel.UnknownOptionError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, []string{"id3"}, unknown.IDs)
	assert.Empty(t, m.SelectedIDs(), "failed assignment keeps the previous selection")
}

func TestSingle_Selection(t *testing.T) {
	m := selectmodel.New(false)
	m.SetValues(options)

	require.NoError(t, m.SetSelectedID("id2"))
	id, err := m.SelectedID()
	require.NoError(t, err)
	assert.Equal(t, "id2", id)

	o, ok := m.SelectedValue()
	require.True(t, ok)
	assert.Equal(t, "Two", o.Name)

	require.ErrorIs(t, m.SetSelectedIDs([]string{"id1", "id2"}), selectmodel.ErrSingleSelect)

	require.NoError(t, m.SetSelectedID(""))
	assert.False(t, m.HasSelectedItem())
	_, ok = m.SelectedValue()
	assert.False(t, ok)
}

func TestMultiple_Selection(t *testing.T) {
	m := selectmodel.New(true)
	m.SetValues(options)

	require.NoError(t, m.SetSelectedIDs([]string{"id2", "id1", "id2"}))
	assert.Equal(t, []string{"id2", "id1"}, m.SelectedIDs())
	assert.Equal(t, options, m.SelectedValues(), "option-list order")

	_, err := m.SelectedID()
	require.ErrorIs(t, err, selectmodel.ErrMultipleSelect)
	require.ErrorIs(t, m.SetSelectedID("id1"), selectmodel.ErrMultipleSelect)
}

func TestSetValues_ClearsSelection(t *testing.T) {
	m := selectmodel.New(false)
	m.SetValues(options)
	require.NoError(t, m.SetSelectedID("id1"))

	m.SetValues(options)
	assert.False(t, m.HasSelectedItem())

	m.ClearValues()
	assert.Empty(t, m.Values())
	_, ok := m.FindValue("id1")
	assert.False(t, ok)
}

func TestSetSelected_FromFieldValue(t *testing.T) {
	single := selectmodel.New(false)
	single.SetValues(options)
	require.NoError(t, single.SetSelected("id1"))
	assert.Equal(t, []string{"id1"}, single.SelectedIDs())
	require.NoError(t, single.SetSelected(nil))
	assert.False(t, single.HasSelectedItem())

	multi := selectmodel.New(true)
	multi.SetValues(options)
	require.NoError(t, multi.SetSelected([]any{"id1", "id2"}))
	assert.Equal(t, []string{"id1", "id2"}, multi.SelectedIDs())
	require.NoError(t, multi.SetSelected(nil))
	assert.False(t, multi.HasSelectedItem())

	numeric := selectmodel.New(false)
	numeric.SetValues([]selectmodel.Option{{ID: "7"}})
	require.NoError(t, numeric.SetSelected(7))
	assert.Equal(t, []string{"7"}, numeric.SelectedIDs())
}
