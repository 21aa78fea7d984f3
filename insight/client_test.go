package insight

import (
	"context"
	"errors"
	"net"
	"strconv"
	"testing"

	"github.com/arloliu/go-insight/native"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_NilSession(t *testing.T) {
	_, err := NewClient(nil)
	assert.ErrorIs(t, err, ErrSessionNil)
}

func TestConnect_HandshakeFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		_, _ = c.Write([]byte("NOT A GREETING\r\n"))
	}()

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	_, err = Connect(context.Background(), deviceConfig(t, host, port))
	assert.ErrorIs(t, err, native.ErrHandshake)
}

// TestClient_AckCommands drives every plain acknowledge-only command through
// a stub device, asserting the exact command line each method produces.
func TestClient_AckCommands(t *testing.T) {
	tests := []struct {
		name    string
		wantCmd string
		call    func(c *Client) error
	}{
		{"SetOnline", "SO1", func(c *Client) error { return c.SetOnline(Online) }},
		{"SetOffline", "SO0", func(c *Client) error { return c.SetOnline(Offline) }},
		{"SetEventAndWait", "SW8", func(c *Client) error { return c.SetEventAndWait(8) }},
		{"SendMessage", `SM"hello"`, func(c *Client) error { return c.SendMessage("hello") }},
		{"SendMessageWithEvent", `SM"hello"3`, func(c *Client) error { return c.SendMessage("hello", 3) }},
		{"LoadFile", "LFRAMDisk/Product.job", func(c *Client) error { return c.LoadFile("RAMDisk/Product.job") }},
		{"StoreFile", "TFTest.job", func(c *Client) error { return c.StoreFile("Test.job") }},
		{"DeleteFile", "DFRAMDisk/Test.cxd", func(c *Client) error { return c.DeleteFile("RAMDisk/Test.cxd") }},
		{"SetJob", "SJ5", func(c *Client) error { return c.SetJob(5) }},
		{"StoreJob", "TJ5Model.job", func(c *Client) error { return c.StoreJob(5, "Model.job") }},
		{"DeleteJob", "DJ12", func(c *Client) error { return c.DeleteJob(12) }},
		{"SetCellInt", "SIA01042", func(c *Client) error { return c.SetCellInt("A", 10, 42) }},
		{"SetTagInt", "SIcounter 42", func(c *Client) error { return c.SetTagInt("counter", 42) }},
		{"SetCellFloat", "SFB0071.5", func(c *Client) error { return c.SetCellFloat("B", 7, 1.5) }},
		{"SetTagFloat", "SFscale 1.5", func(c *Client) error { return c.SetTagFloat("scale", 1.5) }},
		{"SetCellString", "SSC002hello", func(c *Client) error { return c.SetCellString("C", 2, "hello") }},
		{
			"SetCellRegion", "SRA00510 20 30 40 0 45",
			func(c *Client) error {
				return c.SetCellRegion("A", 5, Region{X: 10, Y: 20, High: 30, Wide: 40, Curve: 45})
			},
		},
		{
			"SetTagRegion", "SRroi 10 20 30 40 0 45",
			func(c *Client) error {
				return c.SetTagRegion("roi", Region{X: 10, Y: 20, High: 30, Wide: 40, Curve: 45})
			},
		},
		{"StoreSettings", "TS", func(c *Client) error { return c.StoreSettings() }},
		{"SetIPAddressLock", "SL1", func(c *Client) error { return c.SetIPAddressLock(1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := startDevice(t, func(t *testing.T, c net.Conn) {
				expectCommand(t, c, tt.wantCmd, "1\r\n")
			})
			assert.NoError(t, tt.call(client))
		})
	}
}

// TestClient_Validation exercises the client-side argument checks, all of
// which must fail before any wire interaction. The client's session is never
// opened; reaching the wire would surface as native.ErrNotReady instead of
// the expected validation error.
func TestClient_Validation(t *testing.T) {
	client := newOfflineClient(t)

	tests := []struct {
		name string
		call func() error
	}{
		{"SetOnlineBadMode", func() error { return client.SetOnline(2) }},
		{"SetEventBadCode", func() error { _, err := client.SetEvent(9); return err }},
		{"SetEventNegativeCode", func() error { return client.SetEventAndWait(-1) }},
		{"SendMessageQuote", func() error { return client.SendMessage(`say "hi"`) }},
		{"SendMessageTwoCodes", func() error { return client.SendMessage("hello", 1, 2) }},
		{"LoadFileEmpty", func() error { return client.LoadFile("") }},
		{"StoreFileExtension", func() error { return client.StoreFile("Test.txt") }},
		{"ReadFileEmpty", func() error { _, err := client.ReadFile(""); return err }},
		{"WriteFileEmpty", func() error { return client.WriteFile("", []byte{1}, "ABCD") }},
		{"DeleteFileExtension", func() error { return client.DeleteFile("Test.bmp") }},
		{"SetJobRange", func() error { return client.SetJob(1000) }},
		{"StoreJobEmptyName", func() error { return client.StoreJob(1, "") }},
		{"ReadJobRange", func() error { _, err := client.ReadJob(-1); return err }},
		{"WriteJobRange", func() error { return client.WriteJob(1000, "a.job", []byte{1}, "ABCD") }},
		{"DeleteJobRange", func() error { return client.DeleteJob(1000) }},
		{"GetCellValueColumn", func() error { _, err := client.GetCellValue("a", 10); return err }},
		{"GetCellValueRow", func() error { _, err := client.GetCellValue("A", 400); return err }},
		{"GetTagValueEmpty", func() error { _, err := client.GetTagValue(""); return err }},
		{"SetTagIntEmpty", func() error { return client.SetTagInt("", 1) }},
		{"SetCellStringEmpty", func() error { return client.SetCellString("A", 1, "") }},
		{"WriteSettingsEmpty", func() error { return client.WriteSettings(nil, "ABCD") }},
		{"SetIPAddressLockRange", func() error { return client.SetIPAddressLock(2) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			assert.ErrorIs(t, err, ErrInvalidArgument)

			var vErr *ValidationError
			assert.ErrorAs(t, err, &vErr)
		})
	}
}

func TestClient_CommandError(t *testing.T) {
	client := startDevice(t, func(t *testing.T, c net.Conn) {
		expectCommand(t, c, "SO1", "-5\r\n")
	})

	err := client.SetOnline(Online)
	require.ErrorIs(t, err, ErrCommandFailed)

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "SO", cmdErr.Command)
	assert.Equal(t, -5, cmdErr.Code)
	assert.Contains(t, cmdErr.Message, "offline")
}

func TestClient_CommandErrorUnknownCode(t *testing.T) {
	client := startDevice(t, func(t *testing.T, c net.Conn) {
		expectCommand(t, c, "TS", "-42\r\n")
	})

	err := client.StoreSettings()

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, -42, cmdErr.Code)
	assert.Equal(t, "unknown status code", cmdErr.Message)
}

func TestClient_GetOnline(t *testing.T) {
	client := startDevice(t, func(t *testing.T, c net.Conn) {
		expectCommand(t, c, "GO", "0\r\n")
	})

	state, err := client.GetOnline()
	require.NoError(t, err)
	assert.Equal(t, Offline, state)
}

func TestClient_GetOnlineUnknownState(t *testing.T) {
	client := startDevice(t, func(t *testing.T, c net.Conn) {
		expectCommand(t, c, "GO", "-9\r\n")
	})

	_, err := client.GetOnline()
	assert.ErrorIs(t, err, ErrCommandFailed)
}

func TestClient_SetEvent(t *testing.T) {
	client := startDevice(t, func(t *testing.T, c net.Conn) {
		expectCommand(t, c, "SE8", "1\r\n<result>pass</result>\r\n")
	})

	result, err := client.SetEvent(8)
	require.NoError(t, err)
	assert.Equal(t, "<result>pass</result>", result)
}

func TestClient_ResetSystem(t *testing.T) {
	// A successful reset drops the connection without a status line.
	client := startDevice(t, func(t *testing.T, c net.Conn) {
		readLine(t, c)
	})

	assert.NoError(t, client.ResetSystem())
}

func TestClient_GetFile(t *testing.T) {
	client := startDevice(t, func(t *testing.T, c net.Conn) {
		expectCommand(t, c, "GF", "1\r\nRAMDisk/Test.job\r\n")
	})

	name, err := client.GetFile()
	require.NoError(t, err)
	assert.Equal(t, "RAMDisk/Test.job", name)
}

func TestClient_GetFileFailure(t *testing.T) {
	// A failure status on a value-returning command arrives alone; the
	// client must surface it without waiting for a value line.
	client := startDevice(t, func(t *testing.T, c net.Conn) {
		expectCommand(t, c, "GF", "-2\r\n")
	})

	_, err := client.GetFile()
	require.ErrorIs(t, err, ErrCommandFailed)

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "GF", cmdErr.Command)
	assert.Equal(t, -2, cmdErr.Code)
	assert.Contains(t, cmdErr.Message, "not been saved")
}

func TestClient_GetJob(t *testing.T) {
	client := startDevice(t, func(t *testing.T, c net.Conn) {
		expectCommand(t, c, "GJ", "1\r\n42\r\n")
	})

	id, err := client.GetJob()
	require.NoError(t, err)
	assert.Equal(t, 42, id)
}

func TestClient_GetJobMalformedID(t *testing.T) {
	client := startDevice(t, func(t *testing.T, c net.Conn) {
		expectCommand(t, c, "GJ", "1\r\nnope\r\n")
	})

	_, err := client.GetJob()
	assert.ErrorIs(t, err, native.ErrProtocol)
}

func TestClient_ReadFile(t *testing.T) {
	client := startDevice(t, func(t *testing.T, c net.Conn) {
		expectCommand(t, c, "RFproduct.job", "1\r\nproduct.job\r\n4\r\nDEADBEEF\r\n")
		writeRaw(t, c, "ABCD\r\n")
	})

	transfer, err := client.ReadFile("product.job")
	require.NoError(t, err)
	assert.Equal(t, "product.job", transfer.Name)
	assert.Equal(t, 4, transfer.Size)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, transfer.Data)
	assert.Equal(t, "ABCD", transfer.Checksum)
}

func TestClient_ReadFileFailure(t *testing.T) {
	client := startDevice(t, func(t *testing.T, c net.Conn) {
		expectCommand(t, c, "RFmissing.job", "-2\r\n")
	})

	_, err := client.ReadFile("missing.job")

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "RF", cmdErr.Command)
	assert.Equal(t, -2, cmdErr.Code)
}

func TestClient_WriteFile(t *testing.T) {
	client := startDevice(t, func(t *testing.T, c net.Conn) {
		want := []string{"WF\r\n", "new.job\r\n", "4\r\n", "DEADBEEF\r\n", "ABCD\r\n"}
		for _, line := range want {
			if got := readLine(t, c); got != line {
				t.Errorf("write line = %q, want %q", got, line)
			}
		}
		writeRaw(t, c, "1\r\n")
	})

	err := client.WriteFile("new.job", []byte{0xde, 0xad, 0xbe, 0xef}, "ABCD")
	assert.NoError(t, err)
}

func TestClient_WriteFileChecksumRejected(t *testing.T) {
	client := startDevice(t, func(t *testing.T, c net.Conn) {
		for i := 0; i < 5; i++ {
			readLine(t, c)
		}
		writeRaw(t, c, "-3\r\n")
	})

	err := client.WriteFile("new.job", []byte{0xde, 0xad, 0xbe, 0xef}, "FFFF")

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, -3, cmdErr.Code)
	assert.Contains(t, cmdErr.Message, "checksum")
}

func TestClient_ReadJob(t *testing.T) {
	client := startDevice(t, func(t *testing.T, c net.Conn) {
		expectCommand(t, c, "RJ7", "1\r\nModel.job\r\n2\r\nBEEF\r\n")
		writeRaw(t, c, "1234\r\n")
	})

	transfer, err := client.ReadJob(7)
	require.NoError(t, err)
	assert.Equal(t, "Model.job", transfer.Name)
	assert.Equal(t, []byte{0xbe, 0xef}, transfer.Data)
	assert.Equal(t, "1234", transfer.Checksum)
}

func TestClient_WriteJob(t *testing.T) {
	client := startDevice(t, func(t *testing.T, c net.Conn) {
		want := []string{"WJ7\r\n", "Model.job\r\n", "2\r\n", "BEEF\r\n", "1234\r\n"}
		for _, line := range want {
			if got := readLine(t, c); got != line {
				t.Errorf("write line = %q, want %q", got, line)
			}
		}
		writeRaw(t, c, "1\r\n")
	})

	err := client.WriteJob(7, "Model.job", []byte{0xbe, 0xef}, "1234")
	assert.NoError(t, err)
}

func TestClient_ReadImage(t *testing.T) {
	client := startDevice(t, func(t *testing.T, c net.Conn) {
		expectCommand(t, c, "RI", "1\r\n4\r\nDEADBEEF\r\nABCD\r\n")
	})

	img, err := client.ReadImage()
	require.NoError(t, err)
	assert.Equal(t, 4, img.Size)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, img.Data)
	assert.Equal(t, "ABCD", img.Checksum)
}

func TestClient_ReadBMP(t *testing.T) {
	client := startDevice(t, func(t *testing.T, c net.Conn) {
		expectCommand(t, c, "RB", "1\r\n2\r\nBEEF\r\n5678\r\n")
	})

	img, err := client.ReadBMP()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xbe, 0xef}, img.Data)
	assert.Equal(t, "5678", img.Checksum)
}

func TestClient_WriteBMP(t *testing.T) {
	client := startDevice(t, func(t *testing.T, c net.Conn) {
		want := []string{"WB\r\n", "2\r\n", "BEEF\r\n", "1234\r\n"}
		for _, line := range want {
			if got := readLine(t, c); got != line {
				t.Errorf("write line = %q, want %q", got, line)
			}
		}
		writeRaw(t, c, "1\r\n")
	})

	assert.NoError(t, client.WriteBMP([]byte{0xbe, 0xef}, "1234"))
}

func TestClient_GetCellValue(t *testing.T) {
	client := startDevice(t, func(t *testing.T, c net.Conn) {
		expectCommand(t, c, "GVA010", "1\r\n37.5\r\n")
	})

	value, err := client.GetCellValue("A", 10)
	require.NoError(t, err)
	assert.Equal(t, "37.5", value)
}

func TestClient_GetTagValue(t *testing.T) {
	client := startDevice(t, func(t *testing.T, c net.Conn) {
		expectCommand(t, c, "GVresult.pass", "1\r\n1\r\n")
	})

	value, err := client.GetTagValue("result.pass")
	require.NoError(t, err)
	assert.Equal(t, "1", value)
}

func TestClient_GetInfo(t *testing.T) {
	client := startDevice(t, func(t *testing.T, c net.Conn) {
		expectCommand(t, c, "GI", "1\r\nModel: IS2000\r\nSerial: 12345\r\nFirmware: 5.7.3\r\n")
	})

	info, err := client.GetInfo()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"Model":    "IS2000",
		"Serial":   "12345",
		"Firmware": "5.7.3",
	}, info)
}

func TestClient_ReadSettings(t *testing.T) {
	client := startDevice(t, func(t *testing.T, c net.Conn) {
		expectCommand(t, c, "RS", "1\r\n4\r\nCAFEBABE\r\n")
		writeRaw(t, c, "0F0F\r\n")
	})

	settings, err := client.ReadSettings()
	require.NoError(t, err)
	assert.Equal(t, 4, settings.Size)
	assert.Equal(t, []byte{0xca, 0xfe, 0xba, 0xbe}, settings.Data)
	assert.Equal(t, "0F0F", settings.Checksum)
}

func TestClient_WriteSettings(t *testing.T) {
	client := startDevice(t, func(t *testing.T, c net.Conn) {
		want := []string{"WS\r\n", "2\r\n", "BEEF\r\n", "1234\r\n"}
		for _, line := range want {
			if got := readLine(t, c); got != line {
				t.Errorf("write line = %q, want %q", got, line)
			}
		}
		writeRaw(t, c, "1\r\n")
	})

	assert.NoError(t, client.WriteSettings([]byte{0xbe, 0xef}, "1234"))
}

func TestClient_GetIPAddressLock(t *testing.T) {
	client := startDevice(t, func(t *testing.T, c net.Conn) {
		expectCommand(t, c, "GL", "1\r\n")
	})

	state, err := client.GetIPAddressLock()
	require.NoError(t, err)
	assert.Equal(t, 1, state)
}

func TestCommandError_Message(t *testing.T) {
	err := &CommandError{Command: "GV", Code: -1, Message: "the cell ID or symbolic tag is invalid"}
	assert.True(t, errors.Is(err, ErrCommandFailed))
	assert.Contains(t, err.Error(), "GV")
	assert.Contains(t, err.Error(), "-1")
}

func TestValidationError_Message(t *testing.T) {
	err := newValidationError("row", "must be between 0 and 399")
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	assert.Contains(t, err.Error(), "row")
}
