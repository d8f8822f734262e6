/*
Package tasksheets is a todo list web application that uses a Google Sheets worksheet
as its system of record.

The application is intended to be deployed on a hosting platform with the configuration
supplied through environment variables (SPREADSHEET_ID, SECRET_KEY, PORT and a service
account key from a file, the GOOGLE_CREDENTIALS_JSON variable or the Base64-encoded
GOOGLE_CREDENTIALS_B64 variable). A .env file is honoured for local development.

tasksheets supports the following commands:

  - serve, to run the web application (the default command)
  - init, to create the todo worksheet and header row
  - export, to download the todo list to a TSV file
  - import, to replace the todo list with the contents of a TSV file
  - version, to display the application version
*/
package tasksheets
