package shell

const helpText = `Commands:
  scan [timeout]               Scan for devices (default timeout from config, 5s)
  connect <address or name>    Connect to a device by address or advertised name
  disconnect                   Disconnect from the current device
  services                     List services and characteristics
  setchar <char-UUID>          Set the default characteristic
  unsetchar                    Clear the default characteristic
  read [char-UUID]             Read from the given or default characteristic
  write [char-UUID] <hex>      Write hex to the given or default characteristic
  notify [char-UUID]           Toggle notifications on the given or default characteristic
  help, ?                      Show this help
  exit, quit                   Quit the shell`
