package reparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeCloudBusiness(t *testing.T) {
	payload := []byte("\x01\x02 3f2504e0-4f89-41d3-9a0c-0305e82c3301 \xff\x00")
	info := DecodeCloud(payload)
	assert.True(t, info.CID.OK())
	assert.Equal(t, "3f2504e0-4f89-41d3-9a0c-0305e82c3301", info.CID.String())
	assert.Equal(t, ONEDRIVE_BUSINESS, info.AccountType)
}

func TestDecodeCloudGUIDValidation(t *testing.T) {
	// Upper case GUIDs are reported in canonical form.
	info := DecodeCloud([]byte("3F2504E0-4F89-41D3-9A0C-0305E82C3301"))
	assert.Equal(t, "3f2504e0-4f89-41d3-9a0c-0305e82c3301", info.CID.String())
	assert.Equal(t, ONEDRIVE_BUSINESS, info.AccountType)

	// A GUID shaped string that is not a valid id is skipped in favour
	// of a later one.
	info = DecodeCloud([]byte(
		"00000000-0000-0000-0000-000000000000|" +
			"3f2504e0-4f89-41d3-9a0c-0305e82c3301"))
	assert.Equal(t, "3f2504e0-4f89-41d3-9a0c-0305e82c3301", info.CID.String())

	// With no valid GUID the personal pattern is tried.
	info = DecodeCloud([]byte(
		"3f2504e0-4f89-71d3-9a0c-0305e82c3301 1234ABCD1234ABCD!"))
	assert.Equal(t, "1234ABCD1234ABCD", info.CID.String())
	assert.Equal(t, ONEDRIVE_PERSONAL, info.AccountType)
}

func TestDecodeCloudPriority(t *testing.T) {
	// Both patterns present: the GUID wins even when it comes later.
	payload := []byte("1234ABCD1234ABCD!\x00\x003f2504e0-4f89-41d3-9a0c-0305e82c3301")
	info := DecodeCloud(payload)
	assert.Equal(t, ONEDRIVE_BUSINESS, info.AccountType)
}

func TestDecodeCloudWhitespaceStripped(t *testing.T) {
	// Whitespace and non-printable bytes inside the identifier are
	// dropped before matching.
	payload := []byte("12 34\tAB\nCD\x0012\x7f34ABCD\xe2!")
	info := DecodeCloud(payload)
	assert.Equal(t, "1234ABCD1234ABCD", info.CID.String())
	assert.Equal(t, ONEDRIVE_PERSONAL, info.AccountType)
}

func TestDecodeCloudNoMatch(t *testing.T) {
	for _, payload := range [][]byte{
		nil,
		[]byte("no identifier here"),
		// Lower case hex is not a personal CID.
		[]byte("1234abcd1234abcd!"),
		// Version 6 GUIDs are not accepted.
		[]byte("3f2504e0-4f89-61d3-9a0c-0305e82c3301"),
		// Neither are Microsoft variant GUIDs.
		[]byte("3f2504e0-4f89-41d3-ca0c-0305e82c3301"),
	} {
		info := DecodeCloud(payload)
		assert.False(t, info.CID.OK())
		assert.Equal(t, CloudIdPlaceholder, info.CID.String())
		assert.Equal(t, UNKNOWN_ACCOUNT, info.AccountType)
	}
}

func TestPrintableText(t *testing.T) {
	assert.Equal(t, "abc!~", printableText([]byte("a b\tc\r\n!\x00\x1f~\x7f\xc3\xa9")))
}
